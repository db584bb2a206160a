package ast

import "testing"

func TestSetSpanRecordsStartAndEnd(t *testing.T) {
	id := NewIdentifier("x")
	SetSpan(id, Span{Start: Position{Line: 2, Column: 5}, End: Position{Line: 2, Column: 6}})
	if got := id.Span().Start; got != (Position{Line: 2, Column: 5}) {
		t.Fatalf("start = %+v", got)
	}
	if got := id.Pos(); got != (Position{Line: 2, Column: 5}) {
		t.Fatalf("Pos() = %+v", got)
	}
	if got := id.Span().End; got != (Position{Line: 2, Column: 6}) {
		t.Fatalf("end = %+v", got)
	}
}

func TestAtSetsPositionOnStatements(t *testing.T) {
	stmt := At(SetIndex("a", Num(5), Num(9)), 3, 1)
	if stmt.Pos() != (Position{Line: 3, Column: 1}) {
		t.Fatalf("index assignment position = %+v", stmt.Pos())
	}
	if stmt.NodeType() != NodeIndexAssignment {
		t.Fatalf("node type = %s", stmt.NodeType())
	}
}

func TestVarDeclarationNodeTypeFollowsDeclaredType(t *testing.T) {
	if got := Var("x", Num(1)).NodeType(); got != NodeVarDeclaration {
		t.Fatalf("untyped var node type = %s", got)
	}
	if got := TypedVar("x", TypeInt, Num(1)).NodeType(); got != NodeTypedVar {
		t.Fatalf("typed var node type = %s", got)
	}
	if got := Println(Str("x")).NodeType(); got != NodePrintlnStatement {
		t.Fatalf("println node type = %s", got)
	}
}

func TestWalkVisitsNestedNodes(t *testing.T) {
	fn := Fn("sum", []string{"n"},
		For("i", Bin("..", Num(0), ID("n")),
			Assign("total", Bin("+", ID("total"), ID("i"))),
		),
		Ret(ID("total")),
	)
	var identifiers []string
	Walk(fn, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			identifiers = append(identifiers, id.Name)
		}
		return true
	})
	want := []string{"n", "total", "i", "total"}
	if len(identifiers) != len(want) {
		t.Fatalf("identifiers = %v, want %v", identifiers, want)
	}
	for i := range want {
		if identifiers[i] != want[i] {
			t.Fatalf("identifiers = %v, want %v", identifiers, want)
		}
	}
}

func TestWalkSkipsChildrenWhenVisitReturnsFalse(t *testing.T) {
	prog := If(Bool(true), Block(Println(ID("inner"))), nil)
	count := 0
	Walk(prog, func(n Node) bool {
		count++
		return n.NodeType() != NodeIfStatement
	})
	if count != 1 {
		t.Fatalf("expected only the root to be visited, got %d", count)
	}
}
