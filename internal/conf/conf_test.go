package conf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"500ms"`, want: 500 * time.Millisecond},
		{name: "seconds", input: `2`, want: 2 * time.Second},
		{name: "fractional seconds", input: `0.25`, want: 250 * time.Millisecond},
		{name: "bad string", input: `"soon"`, wantErr: true},
		{name: "bad type", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.AsDuration())
		})
	}
}

func TestBootstrap_Decode(t *testing.T) {
	raw := `{
		"server": {"http": {"addr": "0.0.0.0:8000", "timeout": "1s"}},
		"data": {"driver": "memory", "redis": {"addr": "127.0.0.1:6379", "cache_ttl": "5m"}},
		"point": {"max_point": 500, "lock_queries": false}
	}`

	var bc Bootstrap
	require.NoError(t, json.Unmarshal([]byte(raw), &bc))

	assert.Equal(t, "0.0.0.0:8000", bc.Server.Http.Addr)
	assert.Equal(t, time.Second, bc.Server.Http.Timeout.AsDuration())
	assert.Equal(t, "memory", bc.Data.Driver)
	assert.Equal(t, 5*time.Minute, bc.Data.Redis.CacheTTL.AsDuration())
	assert.Nil(t, bc.Data.Redis.ReadTimeout)
	assert.Equal(t, time.Duration(0), bc.Data.Redis.ReadTimeout.AsDuration())
	assert.Equal(t, int64(500), bc.Point.MaxPoint)
	require.NotNil(t, bc.Point.LockQueries)
	assert.False(t, *bc.Point.LockQueries)
}
