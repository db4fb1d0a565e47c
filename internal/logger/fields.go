package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldInvestor is the structured log field key for the investor display name.
	FieldInvestor = "investor"
	// FieldFund is the structured log field key for the fund name.
	FieldFund = "fund"
	// FieldIdentity is the structured log field key for the investor identity key.
	FieldIdentity = "identity"
	// FieldProvider is the structured log field key for the drafting provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the drafting model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger, defaulting to
// a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// InvestorFields describes one investor record. The identity key is shortened
// to keep console output readable.
func InvestorFields(name, fund, key string) []zap.Field {
	if len(key) > 12 {
		key = key[:12]
	}
	return StringFields(
		StringField{Key: FieldInvestor, Value: name},
		StringField{Key: FieldFund, Value: fund},
		StringField{Key: FieldIdentity, Value: key},
	)
}

// ProviderFields returns fields describing the drafting provider and model.
func ProviderFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}
