package authz

// Tokens de permiso recurso:acción. Se comparan como strings opacos.
const (
	PermUserManage      = "USER:MANAGE"
	PermRoleManage      = "ROLE:MANAGE"
	PermSystemConfigure = "SYSTEM:CONFIGURE"
	PermOSCreate        = "OS:CREATE"
	PermOSViewAll       = "OS:VIEW_ALL"
	PermPendencyCreate  = "PENDENCY:CREATE"
	PermPendencyUpdate  = "PENDENCY:UPDATE"
	PermPendencyViewAll = "PENDENCY:VIEW_ALL"
	PermAuditView       = "AUDIT:VIEW"
	PermClientLookup    = "CLIENT:LOOKUP"
)

// KnownPermissions catálogo estático sembrado por la migración 00002.
var KnownPermissions = []string{
	PermUserManage,
	PermRoleManage,
	PermSystemConfigure,
	PermOSCreate,
	PermOSViewAll,
	PermPendencyCreate,
	PermPendencyUpdate,
	PermPendencyViewAll,
	PermAuditView,
	PermClientLookup,
}
