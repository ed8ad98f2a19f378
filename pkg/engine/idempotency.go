package engine

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/ast"
)

// ID prefixes per instantiated entity kind.
const (
	forumIDPrefix      = "frm-"
	activationIDPrefix = "act-"
	policyIDPrefix     = "pol-"
)

// targetID derives the deterministic identifier for the entity a rule
// instantiates. The digest covers the owning policy, the stored rule, its
// kind, and the canonical statement text, so the same rule always names
// the same entity and a concurrent duplicate request collides on the
// create write instead of creating a twin.
func targetID(policyID string, rule *governance.PolicyRule, kind ast.TargetKind) string {
	h := sha256.New()
	h.Write([]byte(policyID))
	h.Write([]byte{0})
	h.Write([]byte(rule.ID))
	h.Write([]byte{0})
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(rule.Canonical))
	digest := hex.EncodeToString(h.Sum(nil))[:20]

	switch kind {
	case ast.KindForum:
		return forumIDPrefix + digest
	case ast.KindService:
		return activationIDPrefix + digest
	case ast.KindPolicy:
		return policyIDPrefix + digest
	}
	return digest
}
