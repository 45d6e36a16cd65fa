package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewDirectoryRepository(pool))
	assert.NotNil(t, NewScheduleRepository(pool))
	assert.NotNil(t, NewSearchRepository(pool))
	assert.NotNil(t, NewBookingRepository(pool))
}

func TestInList(t *testing.T) {
	assert.Equal(t, "$1", inList(1, 1))
	assert.Equal(t, "$3,$4,$5", inList(3, 3))
}
