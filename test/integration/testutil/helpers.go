//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/auth"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/service"
)

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, "", nil)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, token, nil)
}

// AuthPOST performs an authenticated POST request with a JSON body.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token, nil)
}

// AuthPOSTWithHeaders is AuthPOST with extra request headers.
func (env *TestEnv) AuthPOSTWithHeaders(path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token, headers)
}

// AuthPATCH performs an authenticated PATCH request with a JSON body.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPatch, path, body, token, nil)
}

// OPTIONS performs an OPTIONS request.
func (env *TestEnv) OPTIONS(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodOptions, path, nil, "", nil)
}

func (env *TestEnv) do(method, path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
		reader = &buf
	}
	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// AdminToken generates a JWT for an admin user with the given role.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "admin@test.com", role)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// PartnerToken generates a partner-realm JWT for partnerID.
func (env *TestEnv) PartnerToken(partnerID uuid.UUID) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmPartner, partnerID, "", "")
	if err != nil {
		env.t.Fatalf("PartnerToken: %v", err)
	}
	return token
}

// CreatePartner creates an active partner through the admin API.
func (env *TestEnv) CreatePartner(email string) domain.Partner {
	env.t.Helper()
	resp := env.AuthPOST("/admin/partners", service.CreatePartnerInput{
		Email:  email,
		Name:   "Partner " + email,
		Status: domain.PartnerStatusActive,
	}, env.AdminToken(auth.RoleAdmin))
	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("CreatePartner: expected 201, got %d", resp.StatusCode)
	}
	var p domain.Partner
	DecodeJSON(env.t, resp, &p)
	return p
}

// CreateClient adds a client to a partner through the admin API.
func (env *TestEnv) CreateClient(partnerID uuid.UUID, name string) domain.Client {
	env.t.Helper()
	resp := env.AuthPOST("/admin/partners/"+partnerID.String()+"/clients",
		service.CreateClientInput{Name: name}, env.AdminToken(auth.RoleAdmin))
	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("CreateClient: expected 201, got %d", resp.StatusCode)
	}
	var c domain.Client
	DecodeJSON(env.t, resp, &c)
	return c
}

// RecordPayment records a payment through the admin API and returns the result.
func (env *TestEnv) RecordPayment(clientID uuid.UUID, commission int64, status domain.PaymentStatus) service.PaymentResult {
	env.t.Helper()
	resp := env.AuthPOST("/admin/clients/"+clientID.String()+"/payments", service.RecordPaymentInput{
		Amount:           commission * 10,
		CommissionAmount: commission,
		Currency:         "EUR",
		Status:           status,
	}, env.AdminToken(auth.RoleAdmin))
	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RecordPayment: expected 201, got %d", resp.StatusCode)
	}
	var res service.PaymentResult
	DecodeJSON(env.t, resp, &res)
	return res
}
