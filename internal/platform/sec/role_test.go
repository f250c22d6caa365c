// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicore/clinicore/internal/platform/sec"
)

/*
TestRole_Can exercises the full capability map.
*/
func TestRole_Can(t *testing.T) {
	tests := []struct {
		name       string
		role       sec.Role
		permission sec.Permission
		allowed    bool
	}{
		{"admin_manages_users", sec.RoleAdmin, sec.PermManageUsers, true},
		{"admin_views_audit", sec.RoleAdmin, sec.PermViewAuditLog, true},
		{"admin_no_patient_access", sec.RoleAdmin, sec.PermAccessPatientRecords, false},
		{"doctor_patient_access", sec.RoleDoctor, sec.PermAccessPatientRecords, true},
		{"doctor_no_user_management", sec.RoleDoctor, sec.PermManageUsers, false},
		{"doctor_no_audit_access", sec.RoleDoctor, sec.PermViewAuditLog, false},
		{"nurse_patient_access", sec.RoleNurse, sec.PermAccessPatientRecords, true},
		{"nurse_no_user_management", sec.RoleNurse, sec.PermManageUsers, false},
		{"unknown_role_holds_nothing", sec.Role("Janitor"), sec.PermAccessPatientRecords, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.role.Can(tt.permission))
		})
	}
}

/*
TestParseRole verifies the closed-set role lookup.
*/
func TestParseRole(t *testing.T) {
	role, ok := sec.ParseRole("Doctor")
	assert.True(t, ok)
	assert.Equal(t, sec.RoleDoctor, role)

	_, ok = sec.ParseRole("doctor")
	assert.False(t, ok, "role names are exact; casing comes from the seeded role table")

	_, ok = sec.ParseRole("SuperUser")
	assert.False(t, ok)
}

/*
TestRole_IsClinical verifies the clinical-role shorthand used by the patient gate.
*/
func TestRole_IsClinical(t *testing.T) {
	assert.True(t, sec.RoleDoctor.IsClinical())
	assert.True(t, sec.RoleNurse.IsClinical())
	assert.False(t, sec.RoleAdmin.IsClinical())
}
