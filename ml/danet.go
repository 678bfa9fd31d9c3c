package ml

import (
	"fmt"
	"strings"

	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/nn"
	F "github.com/wangkuiyi/gotorch/nn/functional"
)

const (
	InputChannels   = 1
	FeatureChannels = 4 * 48
	NumClasses      = 128
)

// DaNetModule is a 1x1 conv stem followed by one inception block, global
// average pooling and a linear classifier over NumClasses.
type DaNetModule struct {
	nn.Module
	Conv1 *nn.Conv2dModule
	Conv2 *nn.Conv2dModule
	Block *InceptionModule
	FC    *nn.LinearModule
}

// DaNet returns a freshly initialized network placed on ctx.Device. It does
// no I/O; see OpenCheckpoint and LoadOrCreate for persistence.
func DaNet(ctx Context) *DaNetModule {
	r := &DaNetModule{
		Conv1: conv(InputChannels, 16, 1, 0),
		Conv2: conv(16, 24, 1, 0),
		Block: Inception(24, 48),
		FC:    nn.Linear(FeatureChannels, NumClasses, true),
	}
	r.Init(r)
	r.To(ctx.Device)
	return r
}

// Forward maps (B, 1, H, W) to (B, NumClasses) log-probabilities.
func (n *DaNetModule) Forward(x torch.Tensor) torch.Tensor {
	x = torch.Relu(n.Conv1.Forward(x))
	x = torch.Relu(n.Conv2.Forward(x))
	x = n.Block.Forward(x)
	x = F.AdaptiveAvgPool2d(x, []int64{1, 1})
	x = torch.Flatten(x, 1, -1)
	x = n.FC.Forward(x)
	return torch.LogSoftmax(x, 1)
}

func (n *DaNetModule) String() string {
	var b strings.Builder
	b.WriteString("DaNet(\n")
	fmt.Fprintf(&b, "  (0): Conv2d(%d, 16, kernel_size=1) + ReLU\n", InputChannels)
	b.WriteString("  (1): Conv2d(16, 24, kernel_size=1) + ReLU\n")
	fmt.Fprintf(&b, "  (2): Inception(%d, %d) -> %d\n", n.Block.InC, n.Block.OutC, n.Block.OutChannels())
	fmt.Fprintf(&b, "    (b1): Conv2d(%d, %d, kernel_size=1) + ReLU\n", n.Block.InC, n.Block.OutC)
	fmt.Fprintf(&b, "    (b2): Conv2d(%d, %d, kernel_size=1) + ReLU, Conv2d(%d, %d, kernel_size=3, padding=1) + ReLU\n",
		n.Block.InC, n.Block.OutC, n.Block.OutC, n.Block.OutC)
	fmt.Fprintf(&b, "    (b3): Conv2d(%d, %d, kernel_size=1) + ReLU, Conv2d(%d, %d, kernel_size=5, padding=2) + ReLU\n",
		n.Block.InC, n.Block.OutC, n.Block.OutC, n.Block.OutC)
	fmt.Fprintf(&b, "    (b4): MaxPool2d(kernel_size=3, stride=1, padding=1), Conv2d(%d, %d, kernel_size=1) + ReLU\n",
		n.Block.InC, n.Block.OutC)
	b.WriteString("  (3): AdaptiveAvgPool2d(1, 1)\n")
	b.WriteString("  (4): Flatten\n")
	fmt.Fprintf(&b, "  (5): Linear(%d, %d)\n", FeatureChannels, NumClasses)
	b.WriteString("  (6): LogSoftmax(dim=1)\n")
	b.WriteString(")")
	return b.String()
}
