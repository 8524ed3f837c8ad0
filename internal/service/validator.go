package service

import (
	"context"
	"log/slog"
	"strings"

	"leadkit/internal/core/domain"
	"leadkit/internal/core/ports"
)

// Validator checks one address at a time against the remote service.
type Validator struct {
	remote ports.SingleValidator
	cred   ports.Credential
	logger *slog.Logger
}

// NewValidator creates a new Validator.
func NewValidator(remote ports.SingleValidator, cred ports.Credential, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{remote: remote, cred: cred, logger: logger}
}

// Validate returns the validation outcome of address.
func (v *Validator) Validate(ctx context.Context, address string) (*ports.SingleResult, error) {
	if v.remote == nil {
		return nil, &domain.ConfigError{Detail: "no validation service configured"}
	}
	if strings.TrimSpace(v.cred.APIKey) == "" {
		return nil, &domain.ConfigError{Detail: "API key is not set"}
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &domain.EmptyInputError{Detail: "email address is blank"}
	}

	res, err := v.remote.ValidateOne(ctx, v.cred, address)
	if err != nil {
		v.logger.Warn("single validation failed", "code", domain.Code(err), "error", err)
		return nil, err
	}
	v.logger.Info("address validated", "status", res.Status, "sub_status", res.SubStatus)
	return res, nil
}
