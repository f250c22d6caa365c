// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

/*
Package patient serves clinical patient records through the role gate.

The record itself is opaque to the security core: this package reads it,
caches it, and returns it, while the interesting behavior — who may read it,
and what the emergency override records — lives in the access rules wired
around it.

Access model:

  - Regular reads require a clinical role (Doctor or Nurse).
  - Break-glass is the emergency override: same clinical roles, but a
    non-empty justification is mandatory and the access is always written
    to the audit trail before the record is returned. The override itself
    is never refused once justified.
*/
package patient

import (
	"time"
)

// # Domain Entity

// Patient is a single clinical record.
type Patient struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"full_name"`
	MedicalHistory string    `json:"medical_history"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldPatientID = "patient_id"
	FieldReason    = "reason"
)
