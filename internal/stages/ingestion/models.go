// internal/stages/ingestion/models.go
package ingestion

const (
	featureStoreFile = "feature_store.csv"
	trainFile        = "train.csv"
	testFile         = "test.csv"
)
