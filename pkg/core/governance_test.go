//go:build governance

package core_test

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/atlas"

// TestGovernance_CoreCohesion verifies that types in pkg/core are genuinely
// shared. A type used by a single package belongs in that package.
//
// Run with: go test -tags governance ./pkg/core/
func TestGovernance_CoreCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	var corePkg *packages.Package
	for _, p := range pkgs {
		if p.PkgPath == modulePath+"/pkg/core" {
			corePkg = p
			break
		}
	}
	if corePkg == nil {
		t.Fatal("Could not find pkg/core")
	}

	// core name -> importing packages
	usage := make(map[string]map[string]bool)
	scope := corePkg.Types.Scope()
	for _, name := range scope.Names() {
		if scope.Lookup(name).Exported() {
			usage[name] = make(map[string]bool)
		}
	}

	for _, p := range pkgs {
		if p.PkgPath == corePkg.PkgPath || p.TypesInfo == nil {
			continue
		}
		for _, obj := range p.TypesInfo.Uses {
			if obj.Pkg() == nil || obj.Pkg().Path() != corePkg.PkgPath {
				continue
			}
			if importers, ok := usage[obj.Name()]; ok && scope.Lookup(obj.Name()) == obj {
				importers[strings.TrimPrefix(p.PkgPath, modulePath+"/")] = true
			}
		}
	}

	for name, importers := range usage {
		if cohesionAllowlist[name] {
			continue
		}
		switch len(importers) {
		case 0:
			t.Logf("WARNING: Unused core type: %s (consider deleting)", name)
		case 1:
			for user := range importers {
				t.Errorf("COHESION VIOLATION: 'core.%s' is used ONLY by '%s'.\n"+
					"   Fix: Move it from pkg/core to %s.", name, user, user)
			}
		}
	}
}

// cohesionAllowlist names core types allowed a single user. Language and
// Currency are parts of Country that only the test fixtures build by hand.
var cohesionAllowlist = map[string]bool{
	"Language":        true,
	"Currency":        true,
	"AlphaLookupFunc": true,
}
