// Package mocks provides mock implementations of the identity ports for tests.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockIdentityStore(ctrl)
//	store.EXPECT().FindByEmail(gomock.Any(), "ana@x.com").Return(identity, nil)
package mocks

// Generate mock for IdentityStore interface from internal/ports package.
// This creates MockIdentityStore with methods for all IdentityStore interface methods:
// FindByEmail, ExistsByNationalIDOrEmail, Insert
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_store_mock.go github.com/vanvan/vanvan-auth/internal/ports IdentityStore

// Generate mock for SecretHasher interface from internal/ports package.
// This creates MockSecretHasher with methods: Hash, Compare
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=secret_hasher_mock.go github.com/vanvan/vanvan-auth/internal/ports SecretHasher
