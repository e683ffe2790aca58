package http

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/application"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		writeMappedError(r.Context(), w, "readiness",
			fmt.Errorf("%w: identity store: %v", domain.ErrDependencyUnavailable, err))
		return
	}
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) provisionIndividual(w http.ResponseWriter, r *http.Request) {
	var req application.IndividualRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "provision_individual", err)
		return
	}
	req.IPAddress = readIP(r)

	res, err := h.service.ProvisionIndividual(r.Context(), req, idempotencyKey(r))
	if err != nil {
		writeMappedError(r.Context(), w, "provision_individual", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) provisionOrganization(w http.ResponseWriter, r *http.Request) {
	var req application.OrganizationRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "provision_organization", err)
		return
	}
	req.IPAddress = readIP(r)

	res, err := h.service.ProvisionOrganization(r.Context(), req, idempotencyKey(r))
	if err != nil {
		writeMappedError(r.Context(), w, "provision_organization", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Idempotency-Key"))
}

func readIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
