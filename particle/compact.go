package particle

// Compact removes every zombie-flagged particle in place, copying live
// slots downward (stable, order-preserving) to produce a compact prefix
// across every allocated column (spec §4.H). onZombie is invoked once per
// removed particle that carries the DestructionListener flag, at its old
// index, before the copy — used to fire the
// destruction listener while the old index is still meaningful. It returns
// the old->new index map (InvalidIndex for removed particles) and the new
// live count.
func (b *Buffers) Compact(onZombie func(oldIndex int)) (newIndex []int, newCount int) {
	n := b.count
	newIndex = make([]int, n)

	for i := 0; i < n; i++ {
		if b.Flags.data[i]&Zombie != 0 {
			if onZombie != nil && b.Flags.data[i]&DestructionListener != 0 {
				onZombie(i)
			}
			newIndex[i] = InvalidIndex
			continue
		}
		newIndex[i] = newCount
		if i != newCount {
			b.Flags.data[newCount] = b.Flags.data[i]
			b.Position.data[newCount] = b.Position.data[i]
			b.Velocity.data[newCount] = b.Velocity.data[i]
			b.GroupRef.data[newCount] = b.GroupRef.data[i]
			if b.Depth != nil {
				b.Depth.data[newCount] = b.Depth.data[i]
			}
			if b.Color != nil {
				b.Color.data[newCount] = b.Color.data[i]
			}
			if b.UserData != nil {
				b.UserData.data[newCount] = b.UserData.data[i]
			}
		}
		newCount++
	}

	b.SetCount(newCount)
	return newIndex, newCount
}
