// Package core defines the shared language of the atlas system.
//
// This package contains:
//   - Domain entities (Country, Language, Currency, Code)
//   - Service interfaces (Provider)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
