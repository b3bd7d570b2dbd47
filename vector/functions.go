package vector

import (
	"database/sql/driver"
	"fmt"
	"sync"

	sqlite "modernc.org/sqlite"
)

const cosineFn = "vec_cosine_distance"

var registerOnce sync.Once

// registerSQLiteFunctions registers the cosine distance scalar function
// with the sqlite driver so it is available to connections opened
// afterwards. Registration is process-wide and idempotent.
func registerSQLiteFunctions() {
	registerOnce.Do(func() {
		_ = sqlite.RegisterDeterministicScalarFunction(cosineFn, 2, cosineDistanceImpl)
	})
}

func cosineDistanceImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", cosineFn, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	d, err := CosineDistance(a, b)
	if err != nil {
		return nil, err
	}
	return float64(d), nil
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T; want BLOB", cosineFn, arg)
	}
}
