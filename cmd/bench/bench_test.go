package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cmd := NewCmd()

	producers, err := cmd.Flags().GetInt("producers")
	assert.Nil(t, err)
	assert.Equal(t, 4, producers)

	work, err := cmd.Flags().GetDuration("work-time")
	assert.Nil(t, err)
	assert.Equal(t, time.Millisecond, work)
}

func TestBench(t *testing.T) {
	cmd := NewCmd()
	cmd.SetArgs([]string{
		"--producers", "2",
		"--items", "5",
		"--queue-max", "2",
		"--funnel-max", "2",
		"--work-time", "1ms",
	})

	assert.Nil(t, cmd.Execute())
}
