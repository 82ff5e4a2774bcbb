// Package validation fails startup fast when a service the deployment
// marked as required is unreachable.
package validation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"go.uber.org/zap"
)

// Known optional services, checked in this order
var KnownServices = []string{"postgres", "redis", "s3", "ses"}

// EnvPrefix is prepended to the upper-cased service name, e.g. CHAT_REQUIRE_REDIS
const EnvPrefix = "CHAT_REQUIRE_"

// Check probes one service
type Check func(ctx context.Context) error

// ServiceValidator handles validation of optional services
type ServiceValidator struct {
	requiredServices []string
	checks           map[string]Check
	timeout          time.Duration
}

// NewServiceValidator creates a validator for the services enabled through
// CHAT_REQUIRE_<SERVICE>. checks maps service names to probes; a required
// service without a probe is reported as not configured.
func NewServiceValidator(checks map[string]Check) *ServiceValidator {
	return &ServiceValidator{
		requiredServices: parseRequiredServices(os.Getenv),
		checks:           checks,
		timeout:          10 * time.Second,
	}
}

// RequiredServices returns the services that must be reachable
func (sv *ServiceValidator) RequiredServices() []string {
	return sv.requiredServices
}

// ValidateServices validates all configured services
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	if len(sv.requiredServices) == 0 {
		logger.Log.Info("No required services configured for validation")
		return nil
	}

	logger.Log.Info("Validating required services", zap.Strings("services", sv.requiredServices))

	for _, name := range sv.requiredServices {
		check, ok := sv.checks[name]
		if !ok || check == nil {
			return fmt.Errorf("required service %q is not configured", name)
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, sv.timeout)
		err := check(timeoutCtx)
		cancel()
		if err != nil {
			logger.Log.Error("Required service validation failed", zap.String("service", name), zap.Error(err))
			return fmt.Errorf("required service %q validation failed: %w", name, err)
		}

		logger.Log.Info("Service validated", zap.String("service", name))
	}
	return nil
}

// parseRequiredServices reads CHAT_REQUIRE_* through getenv
func parseRequiredServices(getenv func(string) string) []string {
	var required []string
	for _, service := range KnownServices {
		if isTruthy(getenv(EnvPrefix + strings.ToUpper(service))) {
			required = append(required, service)
		}
	}
	return required
}

// isTruthy checks if a string value represents a truthy value
func isTruthy(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
