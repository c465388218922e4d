package main

import (
	"testing"

	"github.com/wfunc/tugofwar/network"
)

func TestCommand(t *testing.T) {
	cases := []struct {
		line  string
		event string
		ok    bool
	}{
		{"create", network.EventCreateLobby, true},
		{"join 1234", network.EventJoinLobby, true},
		{"join", "", false},
		{"answer 12", network.EventSubmitAnswer, true},
		{"12", network.EventSubmitAnswer, true},
		{"   ", "", false},
	}
	for _, c := range cases {
		event, _, ok := command(c.line, "A")
		if event != c.event || ok != c.ok {
			t.Errorf("command(%q) = %q, %v; want %q, %v", c.line, event, ok, c.event, c.ok)
		}
	}

	_, data, _ := command("join 4321", "Budi")
	req := data.(map[string]string)
	if req["code"] != "4321" || req["name"] != "Budi" {
		t.Errorf("Unexpected join payload: %v", req)
	}
}
