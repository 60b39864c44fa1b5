package livehub

import (
	"encoding/json"
	"testing"
)

func TestBuildRoundTrip(t *testing.T) {
	msg, frame, err := build(OpRender, RenderData{HTML: "<div></div>"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if msg.Op != OpRender {
		t.Fatalf("expected op %q, got %q", OpRender, msg.Op)
	}

	var decoded Message
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if decoded.Op != OpRender {
		t.Fatalf("expected decoded op %q, got %q", OpRender, decoded.Op)
	}

	var data RenderData
	if err := json.Unmarshal(decoded.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.HTML != "<div></div>" {
		t.Fatalf("expected html %q, got %q", "<div></div>", data.HTML)
	}
}

func TestBuildMatchesMessageData(t *testing.T) {
	msg, _, err := build(OpAck, AckData{Description: "insert block"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var data AckData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data.Description != "insert block" {
		t.Fatalf("expected description %q, got %q", "insert block", data.Description)
	}
}
