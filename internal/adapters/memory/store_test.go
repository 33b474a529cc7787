package memory_test

import (
	"testing"

	"github.com/barfet/wellbeing-check-in-agent/internal/adapters/memory"
	"github.com/barfet/wellbeing-check-in-agent/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}
