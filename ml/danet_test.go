package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	torch "github.com/wangkuiyi/gotorch"
)

func TestDaNetForwardIsLogSoftmax(t *testing.T) {
	ctx := CPUContext(1)
	net := DaNet(ctx)

	for _, hw := range [][2]int64{{28, 28}, {5, 9}, {1, 1}} {
		x := torch.RandN([]int64{3, InputChannels, hw[0], hw[1]}, false)
		out := net.Forward(x)
		require.Equal(t, []int64{3, NumClasses}, out.Shape())

		for row := int64(0); row < 3; row++ {
			sum := 0.0
			for c := int64(0); c < NumClasses; c++ {
				v := out.Index(row, c).Item().(float32)
				assert.LessOrEqual(t, v, float32(0))
				sum += math.Exp(float64(v))
			}
			assert.InDelta(t, 1.0, sum, 1e-4)
		}
	}
}

func TestDaNetParameterNames(t *testing.T) {
	net := DaNet(CPUContext(1))
	states := net.StateDict()

	// two stem convs, six block convs, one linear; weight and bias each
	assert.Len(t, states, 18)
	for _, name := range []string{
		"DaNetModule.Conv1.Weight",
		"DaNetModule.Conv2.Bias",
		"DaNetModule.Block.B3Conv5.Weight",
		"DaNetModule.Block.B4Conv1.Bias",
		"DaNetModule.FC.Weight",
	} {
		require.Contains(t, states, name)
	}
	assert.Equal(t, []int64{NumClasses, FeatureChannels}, states["DaNetModule.FC.Weight"].Shape())
	assert.Equal(t, []int64{48, 48, 5, 5}, states["DaNetModule.Block.B3Conv5.Weight"].Shape())
}

func TestDaNetString(t *testing.T) {
	s := DaNet(CPUContext(1)).String()
	assert.Contains(t, s, "Inception(24, 48) -> 192")
	assert.Contains(t, s, "Linear(192, 128)")
}
