// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package sec

// # Staff Roles

// Role represents the authorization label carried by a staff account.
//
// The set is closed: roles are a flat lookup, not a hierarchy. Role names
// match the seeded rows in staff.role so a token claim can be mapped back
// without a database read.
type Role string

const (
	// System administration: provisioning, audit review, forced resets
	RoleAdmin Role = "Admin"

	// Attending clinician with patient-record access
	RoleDoctor Role = "Doctor"

	// Nursing staff with patient-record access
	RoleNurse Role = "Nurse"
)

// # Permissions

// Permission names a single gated capability. Every protected route is
// authorized through exactly one [Role.Can] check against one of these.
type Permission string

const (
	// PermManageUsers covers account provisioning and admin password resets.
	PermManageUsers Permission = "manage_users"

	// PermViewAuditLog covers reading the audit trail.
	PermViewAuditLog Permission = "view_audit_log"

	// PermAccessPatientRecords covers patient lookups and break-glass
	// overrides. Held by clinical roles only.
	PermAccessPatientRecords Permission = "access_patient_records"
)

// rolePermissions is the full capability map. Adding a route means picking
// an existing permission or extending this table, never comparing role
// strings at the call site.
var rolePermissions = map[Role]map[Permission]bool{
	RoleAdmin: {
		PermManageUsers:  true,
		PermViewAuditLog: true,
	},
	RoleDoctor: {
		PermAccessPatientRecords: true,
	},
	RoleNurse: {
		PermAccessPatientRecords: true,
	},
}

// ParseRole maps a stored or claimed role name to a [Role].
// The second return value is false for anything outside the closed set.
func ParseRole(name string) (Role, bool) {
	role := Role(name)
	_, known := rolePermissions[role]
	return role, known
}

// Can reports whether the role holds the given permission.
// Unknown roles hold nothing.
func (r Role) Can(p Permission) bool {
	return rolePermissions[r][p]
}

// IsClinical reports whether the role may touch patient records.
func (r Role) IsClinical() bool {
	return r.Can(PermAccessPatientRecords)
}
