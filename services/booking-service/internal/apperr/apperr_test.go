package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestCapacityReached(t *testing.T) {
	err := CapacityReached(2)
	assert.Equal(t, KindConflict, err.Kind)
	assert.Equal(t, "Horário não disponível", err.Msg)
	assert.Equal(t, "Limite de agendamentos simultâneos atingido (2)", err.Message)
	assert.Equal(t, 2, err.Limit)
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create: %w", NotFound("Especialidade não encontrada"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	deadlock := &pgconn.PgError{Code: "40P01"}
	assert.Equal(t, KindTransient, KindOf(Classify(fmt.Errorf("count: %w", deadlock))))
	assert.Equal(t, KindTransient, KindOf(Classify(context.DeadlineExceeded)))

	bad := BadRequest("x")
	assert.Same(t, bad, Classify(bad))

	plain := errors.New("plain")
	assert.Equal(t, plain, Classify(plain))
}
