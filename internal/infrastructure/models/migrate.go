package models

import "gorm.io/gorm"

// All lists every table owned by the gate, in migration order
func All() []interface{} {
	return []interface{}{
		&ProtocolSettings{},
		&ChainConfig{},
		&Asset{},
		&AssetChainFee{},
		&SentSubmission{},
		&ClaimedSubmission{},
		&BlockedSubmission{},
		&SenderNonce{},
		&Oracle{},
		&Confirmation{},
		&AggregatorVersion{},
		&OrderTakeState{},
		&OrderTakePatch{},
		&AuthorizedSrcContract{},
		&CrossChainMessage{},
		&TokenBalance{},
		&RoleAssignment{},
	}
}

// AutoMigrate creates or updates the gate schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
