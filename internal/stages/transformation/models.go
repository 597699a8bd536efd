// internal/stages/transformation/models.go
package transformation

const (
	preprocessorFile = "preprocessor.json"
	trainArrayFile   = "train_array.csv"
	testArrayFile    = "test_array.csv"
)

// Scaling assignment for the engineered feature columns. Everything else
// passes through unscaled.
var (
	standardScaledColumns = []string{"Age", "Vintage"}
	minMaxScaledColumns   = []string{"Annual_Premium"}
)
