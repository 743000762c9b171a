package plan

import "strconv"

// stem hands out names made of a prefix and a counter, skipping taken ones.
// A nil namespace is treated as free.
type stem struct {
	taken  map[string]struct{}
	prefix string
	last   int
}

func newStem(prefix string, namespace map[string]struct{}) *stem {
	return &stem{taken: namespace, prefix: prefix}
}

func (s *stem) next() string {
	if s.taken == nil {
		s.taken = make(map[string]struct{})
	}

	for {
		s.last++
		name := s.prefix + strconv.Itoa(s.last)

		if _, ok := s.taken[name]; !ok {
			s.taken[name] = struct{}{}
			return name
		}
	}
}

// dealer queues the nodes to describe, each one once, in discovery order.
type dealer struct {
	queue  []*Node
	labels map[*Node]string
	names  *stem
}

func newDealer() *dealer {
	return &dealer{
		labels: make(map[*Node]string),
		names:  newStem("#", nil),
	}
}

// need returns the label of n, queueing n the first time it is seen.
func (d *dealer) need(n *Node) string {
	if label, ok := d.labels[n]; ok {
		return label
	}

	label := d.names.next()
	d.labels[n] = label
	d.queue = append(d.queue, n)

	return label
}

// next pops the next queued node.
func (d *dealer) next() (*Node, bool) {
	if len(d.queue) == 0 {
		return nil, false
	}

	n := d.queue[0]
	d.queue = d.queue[1:]

	return n, true
}
