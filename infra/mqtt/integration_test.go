package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/evfleet/ocppcore/core/charging"
	"github.com/evfleet/ocppcore/core/evse"
	"github.com/evfleet/ocppcore/infra/ocppmsg"
)

// TestBridgeIntegration runs the full request/response round trip against a
// real Mosquitto broker.
func TestBridgeIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	// give broker time to fully start
	time.Sleep(500 * time.Millisecond)

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	brokerURL := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	registry := evse.NewMemoryRegistry(evse.Info{ID: 1, PhaseType: evse.PhaseTypeAC})
	engine := charging.NewEngine(charging.NewProfileStore(nil), registry, nil, nil, nil)

	var bridge *Bridge
	for i := 0; i < 5; i++ {
		bridge, err = NewBridge(Config{Broker: brokerURL, ClientID: "station", TopicPrefix: "ocpp"}, engine)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect bridge: %v", err)
	}
	defer bridge.Disconnect()

	opts := paho.NewClientOptions().AddBroker(brokerURL).SetClientID("csms")
	csms := paho.NewClient(opts)
	if token := csms.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("csms connect: %v", token.Error())
	}
	defer csms.Disconnect(250)

	respCh := make(chan []byte, 1)
	token := csms.Subscribe("ocpp/resp/SetChargingProfile", 0, func(_ paho.Client, m paho.Message) {
		respCh <- m.Payload()
	})
	if token.Wait() && token.Error() != nil {
		t.Fatalf("csms subscribe: %v", token.Error())
	}

	payload := `{"messageId":"it-1","payload":{"evseId":1,"chargingProfile":{"id":5,"stackLevel":0,"chargingProfilePurpose":"TxDefaultProfile","chargingProfileKind":"Absolute","chargingSchedule":[{"id":1,"startSchedule":"2024-01-17T17:00:00Z","chargingRateUnit":"A","chargingSchedulePeriod":[{"startPeriod":0,"limit":16}]}]}}}`
	if token := csms.Publish("ocpp/req/SetChargingProfile", 0, false, payload); token.Wait() && token.Error() != nil {
		t.Fatalf("csms publish: %v", token.Error())
	}

	select {
	case data := <-respCh:
		var env struct {
			MessageID string          `json:"messageId"`
			Payload   json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.MessageID != "it-1" {
			t.Fatalf("expected correlation id it-1, got %s", env.MessageID)
		}
		var resp ocppmsg.SetChargingProfileResponse
		if err := json.Unmarshal(env.Payload, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != ocppmsg.ProfileStatusAccepted {
			t.Fatalf("expected Accepted, got %s", resp.Status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for response")
	}
}
