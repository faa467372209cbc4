package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/auth"
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT",
		Long: `Sign a token with JWT_SECRET for the admin or partner realm. Production
tokens come from the identity service; this is for local testing.`,
		Args: cobra.NoArgs,
		RunE: runToken,
	}
	cmd.Flags().String("realm", string(auth.RealmAdmin), "Realm: admin or partner")
	cmd.Flags().String("subject", "", "Subject id (partner id for the partner realm)")
	cmd.Flags().String("role", auth.RoleAdmin, "Admin role: viewer, admin or superadmin")
	cmd.Flags().String("email", "", "Email claim")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}

	rawRealm, _ := cmd.Flags().GetString("realm")
	realm, err := auth.ParseRealm(rawRealm)
	if err != nil {
		return err
	}
	rawSubject, _ := cmd.Flags().GetString("subject")
	subject, err := uuid.Parse(rawSubject)
	if err != nil {
		return fmt.Errorf("invalid subject %q", rawSubject)
	}
	role, _ := cmd.Flags().GetString("role")
	if realm == auth.RealmPartner {
		role = ""
	}
	email, _ := cmd.Flags().GetString("email")

	mgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAdminExpiry, cfg.JWTPartnerExpiry)
	token, err := mgr.GenerateToken(realm, subject, email, role)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
