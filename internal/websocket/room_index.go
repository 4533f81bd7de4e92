package websocket

// roomIndex maps a room id to the ids of the clients currently in it.
// A client is in at most one room; empty rooms are dropped.
type roomIndex struct {
	rooms map[string]map[string]struct{}
}

func newRoomIndex() *roomIndex {
	return &roomIndex{rooms: make(map[string]map[string]struct{})}
}

func (ri *roomIndex) join(room, clientID string) {
	members, ok := ri.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		ri.rooms[room] = members
	}
	members[clientID] = struct{}{}
}

func (ri *roomIndex) leave(room, clientID string) {
	members, ok := ri.rooms[room]
	if !ok {
		return
	}
	delete(members, clientID)
	if len(members) == 0 {
		delete(ri.rooms, room)
	}
}

// members returns the room's client ids; empty for an unknown room.
func (ri *roomIndex) members(room string) []string {
	set := ri.rooms[room]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (ri *roomIndex) len() int {
	return len(ri.rooms)
}
