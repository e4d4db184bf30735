// Package v1 implements the v1 JSON API.
package v1

import (
	"github.com/stashbox/backend/pkg/reconcile"
	"gorm.io/gorm"
)

// Controller holds the dependencies of all v1 handlers.
type Controller struct {
	DB     *gorm.DB
	Engine *reconcile.Engine
}
