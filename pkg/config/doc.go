// Package config loads and validates application configuration from
// environment variables with sensible defaults.
//
// Server settings:
//
//	STUDIO_HOST="0.0.0.0"
//	STUDIO_PORT="8080"
//	STUDIO_HEALTH_PORT="9090"
//	STUDIO_READ_TIMEOUT="15s"
//	STUDIO_WRITE_TIMEOUT="15s"
//
// Database settings:
//
//	STUDIO_DB_DRIVER="sqlite3"  # sqlite3 or postgres
//	STUDIO_DB_DSN="studio.db"
//
// Session settings:
//
//	STUDIO_REDIS_ADDR="localhost:6379"  # empty = in-memory sessions
//	STUDIO_WIZARD_SESSION_TTL="24h"
//
// Checkout and mail settings:
//
//	STUDIO_CHECKOUT_BASE_URL="https://pay.example.com"
//	STUDIO_SMTP_HOST="localhost"
//	STUDIO_SMTP_PORT="587"
//	STUDIO_MAIL_FROM="noreply@pixelforge.studio"
//	STUDIO_OPERATOR_EMAIL="hello@pixelforge.studio"
//
// Upload settings:
//
//	STUDIO_UPLOADS_TYPE="filesystem"  # filesystem or s3
//	STUDIO_UPLOADS_ROOT="/var/studio/uploads"
//	STUDIO_S3_BUCKET="studio-uploads"
//	STUDIO_S3_REGION="us-east-1"
//
// Pricing settings:
//
//	STUDIO_PRICING_FILE="pricing.yaml"  # empty = built-in table
//	STUDIO_PRICING_WATCH="true"
package config
