package kvdb

const (
	VideosBucket   = "videos"
	ViewsBucket    = "views"
	RequestsBucket = "requests"
)

var buckets = []string{VideosBucket, ViewsBucket, RequestsBucket}

type DB interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	// Update replaces the value at key with the result of fn inside a single transaction.
	// fn is called with found=false when the key does not exist yet.
	Update(bucket string, key string, fn func(value string, found bool) (string, error)) error
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	ForEach(bucket string, fn func(key string, value string) error) error
	Close() error
}
