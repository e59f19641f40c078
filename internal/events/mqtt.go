package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// MessagePublisher MQTT 发布能力（*mqtt.Client 满足该接口）
type MessagePublisher interface {
	Publish(topic string, payload []byte) error
}

// MQTTPublisher 发布到 <prefix>/<organization_id>/<type>
type MQTTPublisher struct {
	client      MessagePublisher
	topicPrefix string
}

func NewMQTTPublisher(client MessagePublisher, topicPrefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topicPrefix: topicPrefix}
}

// Topic 事件对应的 MQTT topic
func (p *MQTTPublisher) Topic(e Event) string {
	return fmt.Sprintf("%s/%s/%s", p.topicPrefix, e.OrganizationID, e.Type)
}

func (p *MQTTPublisher) Publish(_ context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(p.Topic(e), payload)
}
