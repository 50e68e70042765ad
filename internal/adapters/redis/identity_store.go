package redis

// Package redis provides Redis-based adapters for the identity service.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	"github.com/vanvan/vanvan-auth/internal/ports"
)

var _ ports.IdentityStore = (*IdentityStore)(nil)

// DefaultPrefix is the key prefix used by NewIdentityStore.
const DefaultPrefix = "identity:"

// hashTag keeps every identity key in one cluster slot so the insert script may touch them all.
const hashTag = "{identities}"

const insertOK = "ok"

// insertScript checks every unique index key and writes the record and its indexes
// only when none exist. KEYS: record, email, national_id[, license_number]. ARGV: id, record JSON.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then return 'email' end
if redis.call('EXISTS', KEYS[3]) == 1 then return 'national_id' end
if #KEYS > 3 and redis.call('EXISTS', KEYS[4]) == 1 then return 'license_number' end
redis.call('SET', KEYS[1], ARGV[2])
redis.call('SET', KEYS[2], ARGV[1])
redis.call('SET', KEYS[3], ARGV[1])
if #KEYS > 3 then redis.call('SET', KEYS[4], ARGV[1]) end
return 'ok'
`)

// IdentityStore keeps identities in Redis as JSON records with one index key per unique field.
type IdentityStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdentityStore creates a Redis identity store using DefaultPrefix.
func NewIdentityStore(client redis.UniversalClient) *IdentityStore {
	return NewIdentityStoreWithPrefix(client, DefaultPrefix)
}

// NewIdentityStoreWithPrefix creates a Redis identity store with a custom key prefix.
func NewIdentityStoreWithPrefix(client redis.UniversalClient, prefix string) *IdentityStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &IdentityStore{
		client: client,
		prefix: prefix,
	}
}

// storedIdentity is the persisted form; unlike domainauth.Identity it serialises the hash.
type storedIdentity struct {
	ID         string                    `json:"id"`
	FullName   string                    `json:"full_name"`
	NationalID string                    `json:"national_id"`
	Phone      string                    `json:"phone"`
	Email      string                    `json:"email"`
	SecretHash string                    `json:"secret_hash"`
	Role       domainauth.Role           `json:"role"`
	Driver     *domainauth.DriverProfile `json:"driver,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func toStored(i domainauth.Identity) storedIdentity {
	return storedIdentity{
		ID:         i.ID,
		FullName:   i.FullName,
		NationalID: i.NationalID,
		Phone:      i.Phone,
		Email:      domainauth.NormalizeEmail(i.Email),
		SecretHash: i.SecretHash,
		Role:       i.Role,
		Driver:     i.Driver,
		CreatedAt:  i.CreatedAt.UTC(),
	}
}

func (s storedIdentity) toDomain() domainauth.Identity {
	return domainauth.Identity{
		ID:         s.ID,
		FullName:   s.FullName,
		NationalID: s.NationalID,
		Phone:      s.Phone,
		Email:      s.Email,
		SecretHash: s.SecretHash,
		Role:       s.Role,
		Driver:     s.Driver,
		CreatedAt:  s.CreatedAt,
	}
}

func (s *IdentityStore) key(kind, value string) string {
	return s.prefix + hashTag + ":" + kind + ":" + value
}

func (s *IdentityStore) recordKey(id string) string {
	return s.key("id", id)
}

// emailKey normalizes email so index lookups match regardless of case.
func (s *IdentityStore) emailKey(email string) string {
	return s.key("email", domainauth.NormalizeEmail(email))
}

func (s *IdentityStore) nationalKey(nationalID string) string {
	return s.key("national_id", nationalID)
}

func (s *IdentityStore) licenseKey(licenseNumber string) string {
	return s.key("license_number", licenseNumber)
}

// insertKeys returns the script keys for identity in the order insertScript expects.
func (s *IdentityStore) insertKeys(identity domainauth.Identity) []string {
	keys := []string{
		s.recordKey(identity.ID),
		s.emailKey(identity.Email),
		s.nationalKey(identity.NationalID),
	}
	if identity.Driver != nil {
		keys = append(keys, s.licenseKey(identity.Driver.LicenseNumber))
	}
	return keys
}

// FindByEmail resolves email through its index key and loads the JSON record.
// A missing index entry or record yields domainauth.ErrIdentityNotFound.
func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (domainauth.Identity, error) {
	if email == "" {
		return domainauth.Identity{}, domainauth.ErrIdentityNotFound
	}

	id, err := s.client.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Identity{}, domainauth.ErrIdentityNotFound
		}
		return domainauth.Identity{}, fmt.Errorf("redis get email index: %w", err)
	}

	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Identity{}, domainauth.ErrIdentityNotFound
		}
		return domainauth.Identity{}, fmt.Errorf("redis get identity: %w", err)
	}

	var stored storedIdentity
	if unmarshalErr := json.Unmarshal(data, &stored); unmarshalErr != nil {
		return domainauth.Identity{}, fmt.Errorf("unmarshal identity: %w", unmarshalErr)
	}
	return stored.toDomain(), nil
}

// ExistsByNationalIDOrEmail reports whether either unique index key is taken.
func (s *IdentityStore) ExistsByNationalIDOrEmail(ctx context.Context, nationalID, email string) (bool, error) {
	n, err := s.client.Exists(ctx, s.nationalKey(nationalID), s.emailKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Insert runs insertScript, so the uniqueness checks and all writes happen atomically.
func (s *IdentityStore) Insert(ctx context.Context, identity domainauth.Identity) error {
	if identity.ID == "" {
		return errors.New("identity ID cannot be empty")
	}
	if err := identity.CheckExtension(); err != nil {
		return err
	}

	data, err := json.Marshal(toStored(identity))
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	res, err := insertScript.Run(ctx, s.client, s.insertKeys(identity), identity.ID, data).Text()
	if err != nil {
		return fmt.Errorf("redis insert identity: %w", err)
	}
	if res != insertOK {
		return domainauth.DuplicateField(res)
	}
	return nil
}
