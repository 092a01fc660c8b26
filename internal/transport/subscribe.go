package transport

import "bondstream/internal/model"

func (s *session) handleSubscribe(core Core, env Envelope) {
	var req model.SubscribeRequest
	if err := jsonUnmarshal(env.Payload, &req); err != nil {
		s.ackError(env.RequestID, "malformed subscribe payload")
		return
	}

	subID, initial, err := core.Subscribe(s.id, req)
	if err != nil {
		s.ackError(env.RequestID, err.Error())
		return
	}

	ack, aerr := encodeEnvelope(FrameAck, env.RequestID, model.SubscribeAck{
		Success:        true,
		SubscriptionID: subID,
		Message:        "subscribed",
	})
	if aerr != nil {
		s.log.Error("encode subscribe ack", "err", aerr)
		return
	}
	s.enqueue(ack)

	s.sendInitialData(subID, initial)
}

func (s *session) handleUnsubscribe(core Core, env Envelope) {
	var req model.UnsubscribeRequest
	if err := jsonUnmarshal(env.Payload, &req); err != nil {
		s.ackError(env.RequestID, "malformed unsubscribe payload")
		return
	}

	err := core.Unsubscribe(s.id, req.SubscriptionID)
	ack := model.UnsubscribeAck{Success: err == nil}
	if err != nil {
		ack.Message = err.Error()
	} else {
		ack.Message = "unsubscribed"
	}

	data, aerr := encodeEnvelope(FrameAck, env.RequestID, ack)
	if aerr != nil {
		s.log.Error("encode unsubscribe ack", "err", aerr)
		return
	}
	s.enqueue(data)
}

func (s *session) ackError(requestID, message string) {
	data, err := encodeEnvelope(FrameAck, requestID, model.SubscribeAck{Success: false, Message: message})
	if err != nil {
		s.log.Error("encode error ack", "err", err)
		return
	}
	s.enqueue(data)
}

// sendInitialData pushes the current snapshot of every instrument a new
// subscription admits, as an initial-data frame. Each instrument is
// flattened through ToWireFieldMap so the wire shape matches exactly what
// an instrument-update's Fields carries.
func (s *session) sendInitialData(subscriptionID string, instruments []*model.Instrument) {
	flattened := make([]map[string]any, 0, len(instruments))
	for _, inst := range instruments {
		flattened = append(flattened, inst.ToWireFieldMap())
	}

	payload := struct {
		SubscriptionID string           `json:"subscriptionId"`
		Instruments    []map[string]any `json:"instruments"`
	}{SubscriptionID: subscriptionID, Instruments: flattened}

	data, err := encodeEnvelope(FrameInitialData, "", payload)
	if err != nil {
		s.log.Error("encode initial-data", "err", err)
		return
	}
	s.enqueue(data)
}
