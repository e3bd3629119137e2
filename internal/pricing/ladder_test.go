package pricing

import (
	"testing"

	pkgerrors "github.com/foratask/foratask-billing/pkg/errors"
)

func TestPriceBaseBand(t *testing.T) {
	for _, count := range []int{1, 2, 3, 4, 5} {
		amount, err := Price(count)
		if err != nil {
			t.Fatalf("price(%d): %v", count, err)
		}
		if amount != 249 {
			t.Fatalf("price(%d) = %d, expected 249", count, amount)
		}
	}
}

func TestPriceLinearBand(t *testing.T) {
	cases := []struct {
		count    int
		expected int64
	}{
		{6, 299},
		{10, 499},
		{15, 749},
	}
	for _, tc := range cases {
		amount, err := Price(tc.count)
		if err != nil {
			t.Fatalf("price(%d): %v", tc.count, err)
		}
		if amount != tc.expected {
			t.Fatalf("price(%d) = %d, expected %d", tc.count, amount, tc.expected)
		}
	}
}

func TestPriceMonotone(t *testing.T) {
	prev := int64(0)
	for count := 1; count <= 100; count++ {
		amount, err := Price(count)
		if err != nil {
			t.Fatalf("price(%d): %v", count, err)
		}
		if amount < prev {
			t.Fatalf("price decreased at %d users: %d < %d", count, amount, prev)
		}
		prev = amount
	}
}

func TestPriceRejectsNonPositiveCount(t *testing.T) {
	for _, count := range []int{0, -1, -100} {
		_, err := Price(count)
		if err == nil {
			t.Fatalf("price(%d) should fail", count)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("price(%d) expected validation error, got %v", count, err)
		}
	}
}
