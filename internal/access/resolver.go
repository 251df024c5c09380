package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// Scope is the dataset a request is permitted to touch, resolved once per
// operation before any query runs.
type Scope string

const (
	// ScopeSelf restricts the caller to records it owns.
	ScopeSelf Scope = "self"
	// ScopeAll is unrestricted.
	ScopeAll Scope = "all"
)

// Actions every module resolves against.
const (
	ActionList    = "list"
	ActionView    = "view"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
)

// Module names used in permission rows.
const (
	ModuleRequirement   = "requirement"
	ModuleDefect        = "defect"
	ModuleReport        = "report"
	ModuleSTW           = "stw"
	ModuleQuotation     = "quotation"
	ModuleInvoice       = "invoice"
	ModuleCustomer      = "customer"
	ModuleRateCatalog   = "rate_catalog"
	ModuleVendor        = "vendor"
	ModulePurchaseOrder = "purchase_order"
)

// Principal identifies the caller of an operation.
type Principal struct {
	UserID string
	Role   string
}

// Permission grants a role a scope on one (module, action) pair. Absence of
// a matching row denies the request outright.
type Permission struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	Role   string `json:"role" gorm:"size:50;not null;uniqueIndex:idx_role_module_action"`
	Module string `json:"module" gorm:"size:50;not null;uniqueIndex:idx_role_module_action"`
	Action string `json:"action" gorm:"size:20;not null;uniqueIndex:idx_role_module_action"`
	Scope  string `json:"scope" gorm:"size:10;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Permission) TableName() string {
	return "access_permissions"
}

const cacheTTL = 5 * time.Minute

// Resolver is the single authorization primitive: every list/detail/create/
// update/delete operation resolves its scope here before touching data.
type Resolver struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewResolver creates a resolver. rdb may be nil; lookups then always hit
// the permission table.
func NewResolver(db *gorm.DB, rdb *redis.Client) *Resolver {
	return &Resolver{db: db, rdb: rdb}
}

// Resolve returns the caller's scope for (module, action) or
// apperr.ErrUnauthorized when no permission row matches.
func (r *Resolver) Resolve(ctx context.Context, p Principal, module, action string) (Scope, error) {
	if p.Role == "" {
		return "", apperr.ErrUnauthorized
	}

	cacheKey := fmt.Sprintf("access:%s:%s:%s", p.Role, module, action)
	if r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if cached == "deny" {
				return "", apperr.ErrUnauthorized
			}
			return Scope(cached), nil
		}
	}

	var perm Permission
	err := r.db.WithContext(ctx).
		Where("role = ? AND module = ? AND action = ?", p.Role, module, action).
		First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.cache(ctx, cacheKey, "deny")
			return "", apperr.ErrUnauthorized
		}
		return "", fmt.Errorf("resolve scope: %w", err)
	}

	r.cache(ctx, cacheKey, perm.Scope)
	return Scope(perm.Scope), nil
}

func (r *Resolver) cache(ctx context.Context, key, value string) {
	if r.rdb == nil {
		return
	}
	// Cache write failures are ignored; the table remains authoritative.
	r.rdb.Set(ctx, key, value, cacheTTL)
}

// Invalidate drops cached entries for a role after a permission change.
func (r *Resolver) Invalidate(ctx context.Context, role string) error {
	if r.rdb == nil {
		return nil
	}
	iter := r.rdb.Scan(ctx, 0, fmt.Sprintf("access:%s:*", role), 0).Iterator()
	for iter.Next(ctx) {
		r.rdb.Del(ctx, iter.Val())
	}
	return iter.Err()
}
