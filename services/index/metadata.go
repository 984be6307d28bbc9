package index

// RecordStore is the source of truth the search collection is rebuilt from.
// It also keeps the progress of rebuild requests.
type RecordStore interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	ForEach(bucket string, fn func(key string, value string) error) error
}
