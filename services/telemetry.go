package services

import (
	"go.opentelemetry.io/otel"
)

var (
	tracer = otel.Tracer("services/article")
	meter  = otel.Meter("services/article")
)
