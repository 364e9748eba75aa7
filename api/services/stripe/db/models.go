package db

import "errors"

var (
	// ErrUserNotFound indicates no users row matched the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail indicates a users row with the same email already exists.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// User is the billing view of a users row.
type User struct {
	ID               int64
	Email            string
	Name             string
	StripeCustomerID string
	HasMembership    bool
	// MembershipPaused is only meaningful while HasMembership is true.
	MembershipPaused bool
}

// IsMember reports the effective membership status.
func (u User) IsMember() bool {
	return u.HasMembership && !u.MembershipPaused
}

// Field names a reconcilable users column.
type Field string

const (
	FieldStripeCustomerID Field = "stripe_customer_id"
	FieldHasMembership    Field = "has_membership"
	FieldMembershipPaused Field = "membership_paused"
)

// UserPatch holds desired values for billing fields. Nil fields are left alone.
type UserPatch struct {
	StripeCustomerID *string
	HasMembership    *bool
	MembershipPaused *bool
}

// Apply copies every set field whose value differs onto u and returns the
// fields that changed, in column order.
func (p UserPatch) Apply(u *User) []Field {
	var changed []Field
	if p.StripeCustomerID != nil && u.StripeCustomerID != *p.StripeCustomerID {
		u.StripeCustomerID = *p.StripeCustomerID
		changed = append(changed, FieldStripeCustomerID)
	}
	if p.HasMembership != nil && u.HasMembership != *p.HasMembership {
		u.HasMembership = *p.HasMembership
		changed = append(changed, FieldHasMembership)
	}
	if p.MembershipPaused != nil && u.MembershipPaused != *p.MembershipPaused {
		u.MembershipPaused = *p.MembershipPaused
		changed = append(changed, FieldMembershipPaused)
	}
	return changed
}

// Membership returns a patch setting both membership flags.
func Membership(has, paused bool) UserPatch {
	return UserPatch{HasMembership: &has, MembershipPaused: &paused}
}

// Paused returns a patch setting only the paused flag.
func Paused(paused bool) UserPatch {
	return UserPatch{MembershipPaused: &paused}
}

// CustomerID returns a patch setting the Stripe customer link.
func CustomerID(id string) UserPatch {
	return UserPatch{StripeCustomerID: &id}
}
