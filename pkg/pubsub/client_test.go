package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/andalib/andalib-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	tests := []struct {
		project string
		name    string
		want    string
	}{
		{project: "andalib", name: "admin-notifications", want: "projects/andalib/topics/admin-notifications"},
		{project: "andalib", name: "projects/other/topics/t", want: "projects/other/topics/t"},
		{project: "", name: "admin-notifications", want: ""},
		{project: "andalib", name: "  ", want: ""},
	}
	for _, tt := range tests {
		if got := TopicResourceName(tt.project, tt.name); got != tt.want {
			t.Fatalf("TopicResourceName(%q, %q) = %q, want %q", tt.project, tt.name, got, tt.want)
		}
	}
}

func TestNewClientRequiresProjectID(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{NotificationTopic: "t"}, nil)
	if !errors.Is(err, ErrProjectIDRequired) {
		t.Fatalf("expected ErrProjectIDRequired, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("t") != nil {
		t.Fatal("nil client must not return a publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("ping on nil client should fail")
	}
}
