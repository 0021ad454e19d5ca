package enums

import (
	"fmt"
	"strings"
)

// NotificationType names the library event behind an admin notification.
type NotificationType string

const (
	// a member was soft-deleted
	NotificationTypeMemberDeleted NotificationType = "MEMBER_DELETED"
	// a return gained its first damage-proof photo
	NotificationTypeReturnDamageProof NotificationType = "RETURN_DAMAGE_PROOF"
)

func (n NotificationType) String() string { return string(n) }

func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationTypeMemberDeleted, NotificationTypeReturnDamageProof:
		return true
	}
	return false
}

// ParseNotificationType accepts the canonical upper-case name, ignoring case
// and surrounding whitespace.
func ParseNotificationType(value string) (NotificationType, error) {
	n := NotificationType(strings.ToUpper(strings.TrimSpace(value)))
	if !n.IsValid() {
		return "", fmt.Errorf("invalid notification type %q", value)
	}
	return n, nil
}
