package realtime

// Notifier wraps Node for use by the pack service. Event delivery is
// best-effort and never fails a request.
type Notifier struct {
	node *Node
}

func NewNotifier(node *Node) *Notifier {
	return &Notifier{node: node}
}

func (n *Notifier) Broadcast(event string, data interface{}) {
	if err := n.node.Broadcast(event, data); err != nil {
		n.node.log.Warn("failed to broadcast pack event", "event", event, "error", err)
	}
}
