package kvdb

import "github.com/meghashyamc/schoolfinder/db/catalog"

var (
	locationsBucket      = []byte("locations")
	offeringsBucket      = []byte("offerings")
	offeringNamesBucket  = []byte("offering_names")
	establishmentsBucket = []byte("establishments")
	ownersBucket         = []byte("owners")
	ownerEmailsBucket    = []byte("owner_emails")
	reviewsBucket        = []byte("reviews")
	documentsBucket      = []byte("documents")
)

var allBuckets = [][]byte{
	locationsBucket,
	offeringsBucket,
	offeringNamesBucket,
	establishmentsBucket,
	ownersBucket,
	ownerEmailsBucket,
	reviewsBucket,
	documentsBucket,
}

var _ catalog.Store = (*BoltDB)(nil)
