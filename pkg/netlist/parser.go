package netlist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jodafons/gomna/pkg/circuit"
	"github.com/jodafons/gomna/pkg/device"
)

// UnknownDeviceError reports an unrecognized element token.
type UnknownDeviceError struct {
	Token string
}

func (e *UnknownDeviceError) Error() string {
	return fmt.Sprintf("unknown device: %s", e.Token)
}

// CouplingError reports a mutual coupling that references an inductor not
// declared before it.
type CouplingError struct {
	Name string
}

func (e *CouplingError) Error() string {
	return fmt.Sprintf("coupling references unknown inductor: %s", e.Name)
}

// TranParams is the parsed .TRAN card.
type TranParams struct {
	TotalTime float64
	Points    int
	Substeps  int
	Method    device.Method
	UIC       bool
}

var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"meg": 1e6,
	"K":   1e3,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGKkmunpf])?$`)

// ParseValue reads a number with an optional SPICE engineering suffix.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}
	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}
	if matches[2] != "" {
		num *= unitMap[matches[2]]
	}
	return num, nil
}

type parser struct {
	ckt       *circuit.Circuit
	tran      *TranParams
	inductors map[string]*device.Inductor
	hasK      bool
}

// Parse reads a netlist: a node-count line, element lines, a .TRAN card.
// maxVars bounds the total variable allocation.
func Parse(r io.Reader, maxVars int) (*circuit.Circuit, *TranParams, error) {
	scanner := bufio.NewScanner(r)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		lines = append(lines, regexp.MustCompile(`\s+`).ReplaceAllString(line, " "))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("empty netlist")
	}

	maxNodes, err := strconv.Atoi(strings.Fields(lines[0])[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid node count line: %q", lines[0])
	}

	p := &parser{
		ckt:       circuit.New(maxNodes, maxVars),
		inductors: make(map[string]*device.Inductor),
	}
	for _, line := range lines[1:] {
		if err := p.parseLine(line); err != nil {
			return nil, nil, err
		}
	}

	if p.tran == nil {
		return nil, nil, fmt.Errorf("netlist has no .TRAN card")
	}
	if p.tran.Method == device.FE && p.hasK {
		return nil, nil, fmt.Errorf("forward Euler does not support mutual couplings")
	}
	if err := p.ckt.AssignBranches(); err != nil {
		return nil, nil, err
	}
	return p.ckt, p.tran, nil
}

func (p *parser) parseLine(line string) error {
	fields := strings.Fields(line)
	token := fields[0]

	if strings.HasPrefix(token, ".") {
		if strings.EqualFold(token, ".TRAN") {
			return p.parseTran(fields)
		}
		return nil // other dot cards are ignored
	}

	kind := token[0]
	if kind >= 'a' && kind <= 'z' {
		kind -= 'a' - 'A'
	}

	if gk, ok := device.GateKindFromSymbol(kind); ok {
		return p.parseGate(token, gk, fields)
	}

	switch kind {
	case 'R', 'C', 'L', 'X':
		return p.parseTwoTerminal(kind, token, fields)
	case 'K':
		return p.parseCoupling(token, fields)
	case 'G', 'E', 'F', 'H':
		return p.parseControlled(kind, token, fields)
	case 'I', 'V':
		return p.parseSource(kind, token, fields)
	case 'O':
		return p.parseOpAmp(token, fields)
	case 'D':
		return p.parseDiode(token, fields)
	case 'Q':
		return p.parseBjt(token, fields)
	case 'M':
		return p.parseMosfet(token, fields)
	case 'N':
		return p.parseNLResistor(token, fields)
	}
	return &UnknownDeviceError{Token: token}
}

func (p *parser) nodes(labels ...string) ([]int, error) {
	idx := make([]int, len(labels))
	for i, label := range labels {
		n, err := p.ckt.Node(label)
		if err != nil {
			return nil, err
		}
		idx[i] = n
	}
	return idx, nil
}

// parseIC reads an optional trailing IC=value field.
func parseIC(fields []string) (float64, error) {
	for _, f := range fields {
		upper := strings.ToUpper(f)
		if strings.HasPrefix(upper, "IC=") {
			return ParseValue(f[3:])
		}
	}
	return 0, nil
}

func (p *parser) parseTwoTerminal(kind byte, name string, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%s: expected nodes and value", name)
	}
	n, err := p.nodes(fields[1], fields[2])
	if err != nil {
		return err
	}
	value, err := ParseValue(fields[3])
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	switch kind {
	case 'R':
		p.ckt.AddDevice(device.NewResistor(name, n[0], n[1], value))
		return nil
	}

	ic, err := parseIC(fields[4:])
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	switch kind {
	case 'C':
		p.ckt.AddDevice(device.NewCapacitor(name, n[0], n[1], value, ic))
	case 'L':
		l := device.NewInductor(name, n[0], n[1], value, ic)
		p.inductors[name] = l
		p.ckt.AddDevice(l)
	case 'X':
		p.ckt.AddDevice(device.NewNodalInductor(name, n[0], n[1], value, ic))
	}
	return nil
}

func (p *parser) parseCoupling(name string, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%s: expected two inductor names and a coefficient", name)
	}
	l1, ok := p.inductors[fields[1]]
	if !ok {
		return &CouplingError{Name: fields[1]}
	}
	l2, ok := p.inductors[fields[2]]
	if !ok {
		return &CouplingError{Name: fields[2]}
	}
	k, err := ParseValue(fields[3])
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	p.hasK = true
	p.ckt.AddDevice(device.NewMutual(name, l1, l2, k))
	return nil
}

func (p *parser) parseControlled(kind byte, name string, fields []string) error {
	if len(fields) < 6 {
		return fmt.Errorf("%s: expected four nodes and a gain", name)
	}
	n, err := p.nodes(fields[1], fields[2], fields[3], fields[4])
	if err != nil {
		return err
	}
	gain, err := ParseValue(fields[5])
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	switch kind {
	case 'G':
		p.ckt.AddDevice(device.NewVCCS(name, n[0], n[1], n[2], n[3], gain))
	case 'E':
		p.ckt.AddDevice(device.NewVCVS(name, n[0], n[1], n[2], n[3], gain))
	case 'F':
		p.ckt.AddDevice(device.NewCCCS(name, n[0], n[1], n[2], n[3], gain))
	case 'H':
		p.ckt.AddDevice(device.NewCCVS(name, n[0], n[1], n[2], n[3], gain))
	}
	return nil
}

func (p *parser) parseSource(kind byte, name string, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%s: expected nodes and a waveform", name)
	}
	n, err := p.nodes(fields[1], fields[2])
	if err != nil {
		return err
	}

	// Waveform parameters may be wrapped in parentheses.
	raw := strings.Join(fields[4:], " ")
	raw = strings.NewReplacer("(", " ", ")", " ").Replace(raw)
	var params []float64
	for _, f := range strings.Fields(raw) {
		v, err := ParseValue(f)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		params = append(params, v)
	}
	pad := func(k int) []float64 {
		for len(params) < k {
			params = append(params, 0)
		}
		return params
	}

	var wave device.Waveform
	switch strings.ToUpper(fields[3]) {
	case "DC":
		wave = device.DCWave(pad(1)[0])
	case "SIN":
		v := pad(7)
		wave = device.SinWave(v[0], v[1], v[2], v[3], v[4], v[5], v[6])
	case "PULSE":
		v := pad(8)
		wave = device.PulseWave(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7])
	case "PWL":
		if len(params) < 4 || len(params)%2 != 0 {
			return fmt.Errorf("%s: PWL needs time/value pairs", name)
		}
		times := make([]float64, 0, len(params)/2)
		values := make([]float64, 0, len(params)/2)
		for i := 0; i < len(params); i += 2 {
			times = append(times, params[i])
			values = append(values, params[i+1])
		}
		wave = device.PWLWave(times, values)
	default:
		return fmt.Errorf("%s: unknown waveform %q", name, fields[3])
	}

	if kind == 'I' {
		p.ckt.AddDevice(device.NewCurrentSource(name, n[0], n[1], wave))
	} else {
		p.ckt.AddDevice(device.NewVoltageSource(name, n[0], n[1], wave))
	}
	return nil
}

func (p *parser) parseOpAmp(name string, fields []string) error {
	if len(fields) < 5 {
		return fmt.Errorf("%s: expected four nodes", name)
	}
	n, err := p.nodes(fields[1], fields[2], fields[3], fields[4])
	if err != nil {
		return err
	}
	p.ckt.AddDevice(device.NewOpAmp(name, n[0], n[1], n[2], n[3]))
	return nil
}

func (p *parser) parseDiode(name string, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%s: expected two nodes", name)
	}
	n, err := p.nodes(fields[1], fields[2])
	if err != nil {
		return err
	}
	p.ckt.AddDevice(device.NewDiode(name, n[0], n[1]))
	return nil
}

func (p *parser) parseBjt(name string, fields []string) error {
	if len(fields) < 5 {
		return fmt.Errorf("%s: expected three nodes and a type", name)
	}
	n, err := p.nodes(fields[1], fields[2], fields[3])
	if err != nil {
		return err
	}
	var kind device.BjtKind
	switch strings.ToUpper(fields[4]) {
	case "NPN":
		kind = device.NPN
	case "PNP":
		kind = device.PNP
	default:
		return fmt.Errorf("%s: unknown transistor type %q", name, fields[4])
	}
	p.ckt.AddDevice(device.NewBjt(name, n[0], n[1], n[2], kind))
	return nil
}

func (p *parser) parseMosfet(name string, fields []string) error {
	if len(fields) < 8 {
		return fmt.Errorf("%s: expected four nodes, a type, L= and W=", name)
	}
	n, err := p.nodes(fields[1], fields[2], fields[3], fields[4])
	if err != nil {
		return err
	}
	var kind device.MosKind
	switch strings.ToUpper(strings.Trim(fields[5], "()")) {
	case "NMOS":
		kind = device.NMOS
	case "PMOS":
		kind = device.PMOS
	default:
		return fmt.Errorf("%s: unknown transistor type %q", name, fields[5])
	}
	var l, w float64
	for _, f := range fields[6:] {
		upper := strings.ToUpper(f)
		switch {
		case strings.HasPrefix(upper, "L="):
			if l, err = ParseValue(f[2:]); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		case strings.HasPrefix(upper, "W="):
			if w, err = ParseValue(f[2:]); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	if l == 0 || w == 0 {
		return fmt.Errorf("%s: missing L= or W=", name)
	}
	p.ckt.AddDevice(device.NewMosfet(name, n[0], n[1], n[2], n[3], kind, l, w))
	return nil
}

func (p *parser) parseNLResistor(name string, fields []string) error {
	if len(fields) < 11 {
		return fmt.Errorf("%s: expected two nodes and four V/I breakpoints", name)
	}
	n, err := p.nodes(fields[1], fields[2])
	if err != nil {
		return err
	}
	var points [8]float64
	for i := 0; i < 8; i++ {
		if points[i], err = ParseValue(fields[3+i]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	p.ckt.AddDevice(device.NewNLResistor(name, n[0], n[1], points))
	return nil
}

func (p *parser) parseGate(name string, kind device.GateKind, fields []string) error {
	nNodes := 3
	if kind == device.NOT {
		nNodes = 2
	}
	if len(fields) < 1+nNodes+4 {
		return fmt.Errorf("%s: expected %d nodes and V R C A", name, nNodes)
	}
	n, err := p.nodes(fields[1 : 1+nNodes]...)
	if err != nil {
		return err
	}
	var params [4]float64
	for i := 0; i < 4; i++ {
		if params[i], err = ParseValue(fields[1+nNodes+i]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	inA, inB, out := n[0], -1, n[nNodes-1]
	if kind != device.NOT {
		inB = n[1]
	}
	p.ckt.AddDevice(device.NewGate(name, kind, inA, inB, out, params[0], params[1], params[2], params[3]))
	return nil
}

func (p *parser) parseTran(fields []string) error {
	if len(fields) < 5 {
		return fmt.Errorf(".TRAN: expected t_total n_points method n_substeps")
	}
	total, err := ParseValue(fields[1])
	if err != nil {
		return fmt.Errorf(".TRAN: %w", err)
	}
	points, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return fmt.Errorf(".TRAN: %w", err)
	}
	var method device.Method
	switch strings.ToUpper(fields[3]) {
	case "BE":
		method = device.BE
	case "FE":
		method = device.FE
	case "TR":
		method = device.TR
	default:
		return fmt.Errorf(".TRAN: unknown method %q", fields[3])
	}
	substeps, err := strconv.Atoi(fields[4])
	if err != nil {
		return fmt.Errorf(".TRAN: %w", err)
	}
	uic := len(fields) > 5 && strings.EqualFold(fields[5], "UIC")

	p.tran = &TranParams{
		TotalTime: total,
		Points:    int(points),
		Substeps:  substeps,
		Method:    method,
		UIC:       uic,
	}
	return nil
}
