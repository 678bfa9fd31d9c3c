package ml

import (
	"encoding/gob"
	"log"
	"os"

	"github.com/pkg/errors"
	torch "github.com/wangkuiyi/gotorch"
)

// CheckpointStatus reports what OpenCheckpoint did with the path.
type CheckpointStatus int

const (
	CheckpointCreated CheckpointStatus = iota
	CheckpointLoaded
)

func (s CheckpointStatus) String() string {
	if s == CheckpointLoaded {
		return "loaded"
	}
	return "created"
}

// SaveCheckpoint overwrites path with the gob encoded state dict of net.
// Tensors are copied to the CPU first; net itself stays where it is.
func SaveCheckpoint(net *DaNetModule, path string) error {
	f, e := os.Create(path)
	if e != nil {
		return errors.Wrapf(e, "cannot create file to save model %s", path)
	}

	cpu := torch.NewDevice("cpu")
	states := make(map[string]torch.Tensor)
	for name, t := range net.StateDict() {
		states[name] = t.To(cpu, t.Dtype())
	}
	if e := gob.NewEncoder(f).Encode(states); e != nil {
		f.Close()
		return errors.Wrapf(e, "encode checkpoint %s", path)
	}
	if e := f.Sync(); e != nil {
		f.Close()
		return errors.Wrapf(e, "sync checkpoint %s", path)
	}
	return errors.Wrapf(f.Close(), "close checkpoint %s", path)
}

// LoadCheckpoint replaces the parameters of net with those stored at path
// and moves them to device. The checkpoint must come from the same
// architecture.
func LoadCheckpoint(net *DaNetModule, path string, device torch.Device) error {
	f, e := os.Open(path)
	if e != nil {
		return errors.Wrapf(e, "open checkpoint %s", path)
	}
	defer f.Close()

	states := make(map[string]torch.Tensor)
	if e := gob.NewDecoder(f).Decode(&states); e != nil {
		return errors.Wrapf(e, "decode checkpoint %s", path)
	}
	params := net.StateDict()
	if len(states) != len(params) {
		return errors.Errorf("checkpoint %s has %d tensors, the network has %d", path, len(states), len(params))
	}
	// SetData keeps the parameter tensors, so they still require grad and
	// any optimizer built afterwards updates them.
	for name, p := range params {
		t, ok := states[name]
		if !ok {
			return errors.Errorf("checkpoint %s has no tensor %s", path, name)
		}
		if !sameShape(p.Shape(), t.Shape()) {
			return errors.Errorf("checkpoint %s: %s has shape %v, the network wants %v", path, name, t.Shape(), p.Shape())
		}
		p.SetData(t)
	}
	net.To(device)
	return nil
}

func sameShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// OpenCheckpoint ties net to path: an existing checkpoint is loaded into
// net, otherwise the current parameters of net are written there.
func OpenCheckpoint(net *DaNetModule, path string, device torch.Device) (CheckpointStatus, error) {
	_, e := os.Stat(path)
	switch {
	case e == nil:
		return CheckpointLoaded, LoadCheckpoint(net, path, device)
	case os.IsNotExist(e):
		return CheckpointCreated, SaveCheckpoint(net, path)
	default:
		return CheckpointCreated, errors.Wrapf(e, "stat checkpoint %s", path)
	}
}

// LoadOrCreate builds a DaNet on ctx and opens its checkpoint at path.
func LoadOrCreate(ctx Context, path string) (*DaNetModule, CheckpointStatus, error) {
	net := DaNet(ctx)
	status, e := OpenCheckpoint(net, path, ctx.Device)
	if e != nil {
		return nil, status, e
	}
	if status == CheckpointLoaded {
		log.Println("Loaded existing model:", path)
	} else {
		log.Println("Created new model:", path)
	}
	return net, status, nil
}
