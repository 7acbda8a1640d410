package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/ledger"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
)

var tracer = otel.Tracer("github.com/yungbote/cardmarket-backend/internal/services")

// inTx runs fn in a transaction. When dbc already carries one, fn runs in a savepoint of it.
func inTx(db *gorm.DB, dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	conn := dbc.Tx
	if conn == nil {
		conn = db
	}
	ctx := ctxutil.Default(dbc.Ctx)
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

func startSpan(dbc dbctx.Context, name string, attrs ...attribute.KeyValue) (dbctx.Context, trace.Span) {
	ctx, span := tracer.Start(ctxutil.Default(dbc.Ctx), name, trace.WithAttributes(attrs...))
	dbc.Ctx = ctx
	return dbc, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// outcome labels a ledger result for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if _, code := ledger.Classify(err); code != "" {
		return code
	}
	return "error"
}
