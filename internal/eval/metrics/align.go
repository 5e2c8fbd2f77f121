package metrics

import (
	"fmt"
	"html/template"
	"strings"
)

// OpKind is the kind of an edit operation in an alignment trace
type OpKind int

const (
	Match OpKind = iota
	Substitute
	Insert
	Delete
)

var opKindNames = [...]string{"match", "substitute", "insert", "delete"}

func (k OpKind) String() string {
	if int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

func (k OpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *OpKind) UnmarshalText(text []byte) error {
	for i, name := range opKindNames {
		if name == string(text) {
			*k = OpKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown operation kind: %q", text)
}

// Op is a single step of an alignment trace. Ref and Pred hold one code point
// each and are empty when the operation does not touch that side; the matching
// position is -1 in that case.
type Op struct {
	Kind    OpKind `json:"kind"`
	RefPos  int    `json:"ref_pos"`
	PredPos int    `json:"pred_pos"`
	Ref     string `json:"ref,omitempty"`
	Pred    string `json:"pred,omitempty"`
}

// Align backtraces the character edit-distance table between reference and
// prediction and returns the operations in reading order.
//
// The table is indexed [pred][ref]. At each cell the diagonal wins when it is
// not greater than both neighbours; otherwise the left neighbour (consume a
// prediction character) wins when strictly smaller than the diagonal and not
// greater than the upper one; otherwise the upper neighbour (consume a
// reference character) is taken.
func Align(reference, prediction string) []Op {
	ref := []rune(reference)
	pred := []rune(prediction)
	d := EditDistanceMatrix(pred, ref)

	ops := make([]Op, 0, max(len(ref), len(pred)))
	p, r := len(pred), len(ref)

	for p > 0 && r > 0 {
		diagonal := d[p-1][r-1]
		upper := d[p][r-1]
		left := d[p-1][r]

		switch {
		case diagonal <= upper && diagonal <= left:
			kind := Substitute
			if d[p][r] == diagonal {
				kind = Match
			}
			ops = append(ops, Op{Kind: kind, RefPos: r - 1, PredPos: p - 1, Ref: string(ref[r-1]), Pred: string(pred[p-1])})
			p--
			r--
		case left < diagonal && left <= upper:
			ops = append(ops, Op{Kind: Insert, RefPos: -1, PredPos: p - 1, Pred: string(pred[p-1])})
			p--
		default:
			ops = append(ops, Op{Kind: Delete, RefPos: r - 1, PredPos: -1, Ref: string(ref[r-1])})
			r--
		}
	}

	// Leading residue of either side
	for ; p > 0; p-- {
		ops = append(ops, Op{Kind: Insert, RefPos: -1, PredPos: p - 1, Pred: string(pred[p-1])})
	}
	for ; r > 0; r-- {
		ops = append(ops, Op{Kind: Delete, RefPos: r - 1, PredPos: -1, Ref: string(ref[r-1])})
	}

	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}

	return ops
}

// AlignmentCost counts the non-match operations of a trace
func AlignmentCost(ops []Op) int {
	cost := 0
	for _, op := range ops {
		if op.Kind != Match {
			cost++
		}
	}
	return cost
}

// Diff colours
const (
	ColorMatch  = "#3CB371"
	ColorInsert = "#4169E1"
	ColorDelete = "#D2122E"
)

// Segment is one coloured character of a rendered diff
type Segment struct {
	Text  string `json:"text"`
	Class string `json:"class"`
	Color string `json:"color"`
}

// DiffSegments renders a trace for display. A substitution shows the
// predicted character followed by the reference character it replaced.
func DiffSegments(ops []Op) []Segment {
	segments := make([]Segment, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case Match:
			segments = append(segments, Segment{Text: op.Pred, Class: "match", Color: ColorMatch})
		case Substitute:
			segments = append(segments,
				Segment{Text: op.Pred, Class: "insert", Color: ColorInsert},
				Segment{Text: op.Ref, Class: "delete", Color: ColorDelete},
			)
		case Insert:
			segments = append(segments, Segment{Text: op.Pred, Class: "insert", Color: ColorInsert})
		case Delete:
			segments = append(segments, Segment{Text: op.Ref, Class: "delete", Color: ColorDelete})
		}
	}
	return segments
}

// DiffHTML renders the coloured diff of two strings as inline spans
func DiffHTML(reference, prediction string) template.HTML {
	var b strings.Builder
	for _, seg := range DiffSegments(Align(reference, prediction)) {
		fmt.Fprintf(&b, "<span style='color:%s'>%s</span>", seg.Color, template.HTMLEscapeString(seg.Text))
	}
	return template.HTML(b.String())
}
