package simulation

import (
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestSettingsMessage_RoundTrip(t *testing.T) {
	want := Settings{
		Separation:  RuleConfig{Radius: 12, Weight: 0.9},
		Alignment:   RuleConfig{Radius: 40, Weight: 0.5},
		Cohesion:    RuleConfig{Radius: 90, Weight: 0.25},
		Speed:       80,
		MaxTurnRate: 2.5,
	}
	got, err := ParseSettings(NewSettingsMessage(want))
	if err != nil {
		t.Fatalf("ParseSettings returned error: %v", err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestParseSettings_Errors(t *testing.T) {
	missing, _ := structpb.NewStruct(map[string]interface{}{"speed": 3.0})

	wrongType := NewSettingsMessage(DefaultConfig().Settings())
	wrongType.Fields["speed"] = structpb.NewStringValue("fast")

	tests := []struct {
		name string
		msg  *structpb.Struct
	}{
		{"Missing keys", missing},
		{"Not a number", wrongType},
		{"Nil message", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSettings(tt.msg); err == nil {
				t.Error("Expected an error, got nil")
			}
		})
	}
}

func TestTickMessage(t *testing.T) {
	msg := NewTickMessage(time.Second / 60)
	if got := msg.AsDuration(); got != time.Second/60 {
		t.Errorf("Expected 1/60 s, got %v", got)
	}
}

func TestSpawnAndDespawnMessages(t *testing.T) {
	if got := NewSpawnMessage(-3).GetValue(); got != 0 {
		t.Errorf("Expected a negative spawn count to become 0, got %d", got)
	}
	if got := NewSpawnMessage(10).GetValue(); got != 10 {
		t.Errorf("Expected 10, got %d", got)
	}
	if got := NewDespawnMessage(-1).GetValue(); got != -1 {
		t.Errorf("Expected -1, got %d", got)
	}
}

func TestSummary_Struct(t *testing.T) {
	want := Summary{Tick: 1234, Population: 60, Avoiding: 3, Polarization: 0.75}
	if got := ParseSummary(want.toStruct()); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
