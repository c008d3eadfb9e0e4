package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository { return New() })
}

func TestSeedSkipsDuplicates(t *testing.T) {
	tx := storetest.Transaction("s1", core.KindIncome, "Bonus", "100", 5)
	s := New().Seed(storetest.Owner, tx, tx)

	got, err := s.List(context.Background(), storetest.Owner, core.KindIncome)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("seeded %d transactions, want 1", len(got))
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New().Seed(storetest.Owner, storetest.Transaction("s1", core.KindIncome, "Bonus", "100", 5))
	got, _ := s.List(context.Background(), storetest.Owner, core.KindIncome)
	got[0].Title = "changed"

	again, _ := s.List(context.Background(), storetest.Owner, core.KindIncome)
	if again[0].Title != "Bonus" {
		t.Fatalf("List leaked internal slice")
	}
}
