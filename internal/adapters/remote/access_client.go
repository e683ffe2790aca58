package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
)

// AccessControlClient talks to the access-control service's internal HTTP API.
type AccessControlClient struct {
	base baseClient
}

func NewAccessControlClient(baseURL string, timeout time.Duration) *AccessControlClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AccessControlClient{
		base: baseClient{
			baseURL: baseURL,
			http:    &http.Client{Timeout: timeout},
		},
	}
}

func (c *AccessControlClient) ResolveRoleID(ctx context.Context, roleType string) (uuid.UUID, error) {
	var resp struct {
		RoleID string `json:"role_id"`
	}
	q := url.Values{"type": {roleType}}
	if err := c.base.doJSON(ctx, http.MethodGet, "/access/v1/roles/resolve", q, nil, &resp); err != nil {
		return uuid.Nil, err
	}
	roleID, err := uuid.Parse(resp.RoleID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed role id %q", domain.ErrDependencyUnavailable, resp.RoleID)
	}
	return roleID, nil
}

type roleAssignmentRequest struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}

func (c *AccessControlClient) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	var resp struct {
		Success bool `json:"success"`
	}
	req := roleAssignmentRequest{UserID: userID.String(), RoleID: roleID.String()}
	if err := c.base.doJSON(ctx, http.MethodPost, "/access/v1/assignments", nil, req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: role assignment rejected", domain.ErrDependencyUnavailable)
	}
	return nil
}

func (c *AccessControlClient) UnassignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	req := roleAssignmentRequest{UserID: userID.String(), RoleID: roleID.String()}
	return c.base.doJSON(ctx, http.MethodDelete, "/access/v1/assignments", nil, req, nil)
}

var _ ports.AccessControlClient = (*AccessControlClient)(nil)
