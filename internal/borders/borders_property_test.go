package borders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/leapstack-labs/atlas/pkg/core"
)

func TestResolveProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 30
	properties := gopter.NewProperties(params)

	// Each code echoes back as a country whose name is the code, after a
	// delay drawn from the generator, so completion order is arbitrary.
	properties.Property("result[i] corresponds to codes[i]", prop.ForAll(
		func(delays []int) bool {
			codes := make([]core.Code, len(delays))
			wait := make(map[core.Code]time.Duration, len(delays))
			for i, d := range delays {
				codes[i] = core.Code(fmt.Sprintf("C%02d", i))
				wait[codes[i]] = time.Duration(d) * time.Millisecond
			}

			lookup := core.AlphaLookupFunc(func(_ context.Context, code core.Code) (core.Country, error) {
				time.Sleep(wait[code])
				return core.Country{Name: string(code), Alpha3Code: code}, nil
			})

			got, err := NewResolver(lookup).Resolve(context.Background(), codes)
			if err != nil || len(got) != len(codes) {
				return false
			}
			for i := range codes {
				if got[i].Alpha3Code != codes[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.IntRange(0, 5)),
	))

	properties.Property("one failure fails the whole call", prop.ForAll(
		func(n, bad int) bool {
			bad %= n
			codes := make([]core.Code, n)
			for i := range codes {
				codes[i] = core.Code(fmt.Sprintf("C%02d", i))
			}

			lookup := core.AlphaLookupFunc(func(_ context.Context, code core.Code) (core.Country, error) {
				if code == codes[bad] {
					return core.Country{}, fmt.Errorf("lookup %s failed", code)
				}
				return core.Country{Alpha3Code: code}, nil
			})

			got, err := NewResolver(lookup).Resolve(context.Background(), codes)
			return err != nil && got == nil
		},
		gen.IntRange(1, 10), gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
