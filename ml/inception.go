package ml

import (
	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/nn"
	F "github.com/wangkuiyi/gotorch/nn/functional"
)

// InceptionModule runs four branches over the same input and concatenates
// their outputs along the channel axis in branch order.
type InceptionModule struct {
	nn.Module
	InC, OutC int64

	B1Conv1 *nn.Conv2dModule

	B2Conv1 *nn.Conv2dModule
	B2Conv3 *nn.Conv2dModule

	B3Conv1 *nn.Conv2dModule
	B3Conv5 *nn.Conv2dModule

	B4Conv1 *nn.Conv2dModule
}

func conv(inc, outc, kernel, padding int64) *nn.Conv2dModule {
	return nn.Conv2d(inc, outc, kernel, 1, padding, 1, 1, true, "zeros")
}

// Inception builds a block taking inc channels and producing 4*outc.
func Inception(inc, outc int64) *InceptionModule {
	r := &InceptionModule{
		InC:     inc,
		OutC:    outc,
		B1Conv1: conv(inc, outc, 1, 0),
		B2Conv1: conv(inc, outc, 1, 0),
		B2Conv3: conv(outc, outc, 3, 1),
		B3Conv1: conv(inc, outc, 1, 0),
		B3Conv5: conv(outc, outc, 5, 2),
		B4Conv1: conv(inc, outc, 1, 0),
	}
	r.Init(r)
	return r
}

// OutChannels is the channel count of Forward's result.
func (m *InceptionModule) OutChannels() int64 {
	return 4 * m.OutC
}

// Branches returns the four branch outputs before concatenation.
func (m *InceptionModule) Branches(x torch.Tensor) []torch.Tensor {
	b1 := torch.Relu(m.B1Conv1.Forward(x))

	b2 := torch.Relu(m.B2Conv1.Forward(x))
	b2 = torch.Relu(m.B2Conv3.Forward(b2))

	b3 := torch.Relu(m.B3Conv1.Forward(x))
	b3 = torch.Relu(m.B3Conv5.Forward(b3))

	// stride 1 with padding 1 keeps the spatial size
	b4 := F.MaxPool2d(x, []int64{3, 3}, []int64{1, 1}, []int64{1, 1}, []int64{1, 1}, false)
	b4 = torch.Relu(m.B4Conv1.Forward(b4))

	return []torch.Tensor{b1, b2, b3, b4}
}

// Forward executes the calculation
func (m *InceptionModule) Forward(x torch.Tensor) torch.Tensor {
	// (B, 4, outc, H, W) -> (B, 4*outc, H, W); branch i channel c lands on i*outc+c
	return torch.Flatten(torch.Stack(m.Branches(x), 1), 1, 2)
}
