package onnx

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/yanqian/packwise/internal/domain/embedding"
)

var envMu sync.Mutex

// Loader opens an ONNX encoder through onnxruntime.
type Loader struct {
	ModelPath         string
	SharedLibraryPath string
}

// Load implements embedding.ModelLoader.
func (l Loader) Load() (embedding.Model, error) {
	if strings.TrimSpace(l.ModelPath) == "" {
		return nil, errors.New("onnx model path is empty")
	}
	if _, err := os.Stat(l.ModelPath); err != nil {
		return nil, fmt.Errorf("stat onnx model: %w", err)
	}
	if err := l.initEnvironment(); err != nil {
		return nil, err
	}
	inputs, outputs, err := ort.GetInputOutputInfo(l.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect onnx model: %w", err)
	}
	return &Model{
		path:    l.ModelPath,
		inputs:  names(inputs),
		outputs: names(outputs),
	}, nil
}

func (l Loader) initEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if l.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(l.SharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

func names(infos []ort.InputOutputInfo) []string {
	out := make([]string, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Name)
	}
	return out
}

// Model runs inference on a session created for the first negotiated
// input/output binding. Runs are serialized.
type Model struct {
	path    string
	inputs  []string
	outputs []string

	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	key     string
}

func (m *Model) InputNames() []string  { return m.inputs }
func (m *Model) OutputNames() []string { return m.outputs }

// Run implements embedding.Model.
func (m *Model) Run(inputs []embedding.Tensor, output string) (embedding.Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inputNames := make([]string, 0, len(inputs))
	for _, in := range inputs {
		inputNames = append(inputNames, in.Name)
	}
	session, err := m.sessionFor(inputNames, output)
	if err != nil {
		return embedding.Output{}, err
	}

	values := make([]ort.Value, 0, len(inputs))
	defer func() {
		for _, v := range values {
			_ = v.Destroy()
		}
	}()
	for _, in := range inputs {
		tensor, err := ort.NewTensor(ort.NewShape(in.Shape...), in.Data)
		if err != nil {
			return embedding.Output{}, fmt.Errorf("build tensor %s: %w", in.Name, err)
		}
		values = append(values, tensor)
	}

	outputs := []ort.Value{nil}
	if err := session.Run(values, outputs); err != nil {
		return embedding.Output{}, fmt.Errorf("run onnx session: %w", err)
	}
	defer func() {
		if outputs[0] != nil {
			_ = outputs[0].Destroy()
		}
	}()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return embedding.Output{}, fmt.Errorf("output %s is not a float32 tensor", output)
	}
	data := make([]float32, len(hidden.GetData()))
	copy(data, hidden.GetData())
	return embedding.Output{Shape: []int64(hidden.GetShape()), Data: data}, nil
}

func (m *Model) sessionFor(inputNames []string, output string) (*ort.DynamicAdvancedSession, error) {
	key := strings.Join(inputNames, ",") + "->" + output
	if m.session != nil && m.key == key {
		return m.session, nil
	}
	if m.session != nil {
		_ = m.session.Destroy()
		m.session = nil
	}
	session, err := ort.NewDynamicAdvancedSession(m.path, inputNames, []string{output}, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	m.session, m.key = session, key
	return session, nil
}

// Close implements embedding.Model.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}

var (
	_ embedding.ModelLoader = Loader{}
	_ embedding.Model       = (*Model)(nil)
)
