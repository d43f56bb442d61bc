package network

import "testing"

func threeLevelTestLevels() []PrivilegeLevel {
	return []PrivilegeLevel{
		{Name: "exec", PreviousPrivilegeLevel: ""},
		{Name: "privilege-exec", PreviousPrivilegeLevel: "exec"},
		{Name: "configuration", PreviousPrivilegeLevel: "privilege-exec"},
	}
}

func TestBuildGraphMirrorsEdges(t *testing.T) {
	g := buildGraph(threeLevelTestLevels())

	if !g["exec"]["privilege-exec"] {
		t.Fatal("expected exec -> privilege-exec edge from mirroring")
	}
	if !g["privilege-exec"]["exec"] {
		t.Fatal("expected privilege-exec -> exec edge")
	}
	if !g["privilege-exec"]["configuration"] {
		t.Fatal("expected privilege-exec -> configuration edge from mirroring")
	}
	if g["exec"]["configuration"] {
		t.Fatal("did not expect a direct edge between non-adjacent levels")
	}
}

func TestShortestPathEscalation(t *testing.T) {
	g := buildGraph(threeLevelTestLevels())

	path, err := shortestPath(g, "exec", "configuration")
	if err != nil {
		t.Fatalf("shortestPath: %v", err)
	}

	want := []string{"exec", "privilege-exec", "configuration"}
	if len(path) != len(want) {
		t.Fatalf("got path %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("got path %v, want %v", path, want)
		}
	}
}

func TestShortestPathDeescalation(t *testing.T) {
	g := buildGraph(threeLevelTestLevels())

	path, err := shortestPath(g, "configuration", "exec")
	if err != nil {
		t.Fatalf("shortestPath: %v", err)
	}

	want := []string{"configuration", "privilege-exec", "exec"}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("got path %v, want %v", path, want)
		}
	}
}

func TestShortestPathSameLevel(t *testing.T) {
	g := buildGraph(threeLevelTestLevels())

	path, err := shortestPath(g, "exec", "exec")
	if err != nil {
		t.Fatalf("shortestPath: %v", err)
	}
	if len(path) != 1 || path[0] != "exec" {
		t.Fatalf("got %v, want [exec]", path)
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	g := buildGraph(threeLevelTestLevels())
	delete(g, "shell")

	if _, err := shortestPath(g, "exec", "shell"); err == nil {
		t.Fatal("expected error for unreachable target level")
	}
}
