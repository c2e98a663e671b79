// Package decode implements the deterministic schedule decoder: it turns a
// permutation of component identifiers (a genome) into a concrete
// machine-day schedule by simulating production day by day, machine by
// machine, under mold exclusivity, component ownership, changeover, and
// prerequisite constraints.
//
// The decoder is pure and single-threaded: all state is local to one
// Decode call and discarded on return.
package decode

import (
	"math"
	"sort"

	"github.com/moldplan/moldplan/internal/domain"
)

// completion records when a component's demand was fully produced.
type completion struct {
	day  int
	hour float64
}

// machineCarryover is the mounted mold, current color, and last-produced
// component persisted across day boundaries for one machine.
type machineCarryover struct {
	moldID        string
	color         string
	lastComponent string
}

// candidate is one component eligible for the current machine slot, along
// with the preference keys the slot loop sorts by and the setup it would
// require if chosen.
type candidate struct {
	sticky, colorMatch, moldMatch int
	latestStart                   int
	rank                          int
	comp                          domain.Component
	needColorChange               bool
	needMoldChange                bool
}

// Decode runs the event-driven, machine-parallel simulation: it turns a
// permutation of component ids into a concrete machine-day schedule.
// genome must be a permutation of the ids in components; genome entries
// for unknown ids are ignored, and components missing from genome sort
// last by rank.
//
// Returns domain.InvalidInputError if a prerequisite id is unknown or the
// prerequisite graph has a cycle. Every other infeasibility (mold/machine
// mismatch, insufficient capacity, mold contention) degrades into unmet
// demand rather than an error.
func Decode(
	genome []string,
	components []domain.Component,
	machines []domain.Machine,
	molds []domain.Mold,
	monthDays int,
	moldChangeHours, colorChangeHours float64,
) ([]domain.Task, map[string]int, error) {
	moldsByID := make(map[string]domain.Mold, len(molds))
	for _, m := range molds {
		moldsByID[m.ID] = m
	}

	topo, err := topologicalOrder(components)
	if err != nil {
		return nil, nil, err
	}

	rank := make(map[string]int, len(genome))
	for i, id := range genome {
		rank[id] = i
	}
	rankOf := func(id string) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return math.MaxInt32
	}

	compOrder := make([]domain.Component, len(topo))
	copy(compOrder, topo)
	sort.SliceStable(compOrder, func(i, j int) bool {
		return rankOf(compOrder[i].ID) < rankOf(compOrder[j].ID)
	})

	remaining := make(map[string]int, len(components))
	for _, c := range components {
		remaining[c.ID] = c.Quantity
	}
	completionTime := make(map[string]completion, len(components))

	// moldBusy[day][moldID] holds the append-only, per-day interval list
	// enforcing mold exclusivity across machines.
	moldBusy := make(map[int]map[string][]interval, monthDays)
	for d := 1; d <= monthDays; d++ {
		perMold := make(map[string][]interval, len(molds))
		for _, m := range molds {
			perMold[m.ID] = nil
		}
		moldBusy[d] = perMold
	}
	reserve := func(day int, moldID string, start, end float64) {
		moldBusy[day][moldID] = append(moldBusy[day][moldID], interval{Start: start, End: end})
	}

	machineState := make(map[string]machineCarryover, len(machines))
	for _, m := range machines {
		machineState[m.ID] = machineCarryover{}
	}
	componentOwner := make(map[string]string, len(components))

	var tasks []domain.Task

	for day := 1; day <= monthDays; day++ {
		usable := make(map[string]float64, len(machines))
		t := make(map[string]float64, len(machines))
		seq := make(map[string]int, len(machines))
		done := make(map[string]bool, len(machines))
		currentMold := make(map[string]string, len(machines))
		currentColor := make(map[string]string, len(machines))
		lastComponent := make(map[string]string, len(machines))

		for _, m := range machines {
			usable[m.ID] = m.DailyCapacityHours()
			t[m.ID] = 0
			seq[m.ID] = 1
			done[m.ID] = usable[m.ID] <= eps
			carry := machineState[m.ID]
			currentMold[m.ID] = carry.moldID
			currentColor[m.ID] = carry.color
			lastComponent[m.ID] = carry.lastComponent
		}

	slotLoop:
		for {
			machine, ok := pickActiveMachine(machines, t, usable, done)
			if !ok {
				break
			}
			mid := machine.ID
			now := t[mid]
			cap := usable[mid]

			var candidates []candidate
			var waitTimes []float64

			for _, comp := range compOrder {
				if remaining[comp.ID] <= 0 {
					continue
				}
				if owner, has := componentOwner[comp.ID]; has && owner != mid {
					continue
				}

				mold, hasMold := moldsByID[comp.MoldID]
				if !hasMold || !mold.Mountable(machine) || comp.CycleTimeSec <= 0 {
					continue
				}

				needColorChange := currentColor[mid] != comp.Color
				needMoldChange := currentMold[mid] != comp.MoldID

				setup := 0.0
				if needColorChange {
					setup += math.Max(0, colorChangeHours)
				}
				if needMoldChange {
					setup += math.Max(0, moldChangeHours)
				}
				startAfterSetup := now + setup

				perPieceH := comp.PieceHours()
				if perPieceH <= 0 {
					continue
				}

				prereqReady, readyOK := nextReadyTime(comp, completionTime, day, startAfterSetup)
				if !readyOK {
					continue
				}
				produceStart := math.Max(startAfterSetup, prereqReady)
				if cap-produceStart < perPieceH-eps {
					continue
				}

				ivs := moldBusy[day][comp.MoldID]

				moldHoldStart := now
				if needMoldChange && moldChangeHours > 0 {
					if needColorChange {
						moldHoldStart = now + math.Max(0, colorChangeHours)
					}
				}
				moldHoldEndMin := produceStart + perPieceH

				if !intervalsFree(ivs, moldHoldStart, moldHoldEndMin) {
					requiredWindow := moldHoldEndMin - moldHoldStart
					if nxt, found := windowSearch(ivs, moldHoldStart, requiredWindow, cap); found && nxt > now+eps && nxt < cap-eps {
						waitTimes = append(waitTimes, nxt)
					}
					continue
				}

				sticky := 0
				if lastComponent[mid] != "" && comp.ID == lastComponent[mid] {
					sticky = 1
				}
				colorMatch := 0
				if currentColor[mid] != "" && comp.Color == currentColor[mid] {
					colorMatch = 1
				}
				moldMatch := 0
				if currentMold[mid] != "" && comp.MoldID == currentMold[mid] {
					moldMatch = 1
				}

				candidates = append(candidates, candidate{
					sticky:          sticky,
					colorMatch:      colorMatch,
					moldMatch:       moldMatch,
					latestStart:     comp.DueDay - comp.EffectiveLeadTimeDays(),
					rank:            rankOf(comp.ID),
					comp:            comp,
					needColorChange: needColorChange,
					needMoldChange:  needMoldChange,
				})
			}

			if len(candidates) == 0 {
				if len(waitTimes) > 0 {
					tNext := waitTimes[0]
					for _, v := range waitTimes[1:] {
						if v < tNext {
							tNext = v
						}
					}
					if tNext > now+eps {
						tasks = append(tasks, waitTask(day, machine, seq[mid], now, tNext, cap))
						t[mid] = tNext
						seq[mid]++
						continue slotLoop
					}
				}
				done[mid] = true
				t[mid] = cap
				continue slotLoop
			}

			candidates = filterPreferred(candidates, lastComponent[mid] != "", currentColor[mid] != "")
			sort.Slice(candidates, func(i, j int) bool {
				a, b := candidates[i], candidates[j]
				if a.sticky != b.sticky {
					return a.sticky > b.sticky
				}
				if a.colorMatch != b.colorMatch {
					return a.colorMatch > b.colorMatch
				}
				if a.moldMatch != b.moldMatch {
					return a.moldMatch > b.moldMatch
				}
				if a.latestStart != b.latestStart {
					return a.latestStart < b.latestStart
				}
				return a.rank < b.rank
			})

			chosen := candidates[0]

			if chosen.needColorChange {
				ch := math.Max(0, colorChangeHours)
				if ch > 0 {
					if now+ch > cap+eps {
						done[mid] = true
						t[mid] = cap
						continue slotLoop
					}
					tasks = append(tasks, changeColorTask(day, machine, seq[mid], currentColor[mid], chosen.comp.Color, now, now+ch, cap))
					now += ch
					t[mid] = now
					seq[mid]++
				}
				currentColor[mid] = chosen.comp.Color
			}

			if chosen.needMoldChange {
				mh := math.Max(0, moldChangeHours)
				if mh > 0 {
					if now+mh > cap+eps {
						done[mid] = true
						t[mid] = cap
						continue slotLoop
					}
					ivs := moldBusy[day][chosen.comp.MoldID]
					if !intervalsFree(ivs, now, now+mh) {
						if nxt, found := windowSearch(ivs, now, mh, cap); found && nxt > now+eps && nxt < cap-eps {
							tasks = append(tasks, waitTask(day, machine, seq[mid], now, nxt, cap))
							t[mid] = nxt
							seq[mid]++
							continue slotLoop
						}
						done[mid] = true
						t[mid] = cap
						continue slotLoop
					}
					reserve(day, chosen.comp.MoldID, now, now+mh)
					tasks = append(tasks, changeMoldTask(day, machine, seq[mid], currentMold[mid], chosen.comp.MoldID, now, now+mh, cap))
					now += mh
					t[mid] = now
					seq[mid]++
				}
				currentMold[mid] = chosen.comp.MoldID
			}

			prereqReadyNow, readyOK := nextReadyTime(chosen.comp, completionTime, day, now)
			if !readyOK {
				done[mid] = true
				t[mid] = cap
				continue slotLoop
			}
			if prereqReadyNow > now+eps {
				if prereqReadyNow >= cap-eps {
					done[mid] = true
					t[mid] = cap
					continue slotLoop
				}
				if currentMold[mid] != "" {
					ivs := moldBusy[day][currentMold[mid]]
					if !intervalsFree(ivs, now, prereqReadyNow) {
						waitWindow := prereqReadyNow - now
						if nxt, found := windowSearch(ivs, now, waitWindow, cap); found && nxt > now+eps && nxt < cap-eps {
							tasks = append(tasks, waitTask(day, machine, seq[mid], now, nxt, cap))
							t[mid] = nxt
							seq[mid]++
							continue slotLoop
						}
						done[mid] = true
						t[mid] = cap
						continue slotLoop
					}
					reserve(day, currentMold[mid], now, prereqReadyNow)
				}
				tasks = append(tasks, waitTask(day, machine, seq[mid], now, prereqReadyNow, cap))
				now = prereqReadyNow
				t[mid] = now
				seq[mid]++
			}

			perPieceH := chosen.comp.PieceHours()
			startProd := now
			ivs := moldBusy[day][chosen.comp.MoldID]
			hardEnd := cap
			if nxtBusy, has := nextBusyStart(ivs, startProd); has && nxtBusy < cap {
				hardEnd = nxtBusy
			}
			availableRunH := hardEnd - startProd
			if availableRunH < perPieceH-eps {
				done[mid] = true
				t[mid] = cap
				continue slotLoop
			}

			maxQtyFit := int(availableRunH / perPieceH)
			qty := remaining[chosen.comp.ID]
			if maxQtyFit < qty {
				qty = maxQtyFit
			}
			if qty <= 0 {
				done[mid] = true
				t[mid] = cap
				continue slotLoop
			}

			usedH := float64(qty) * perPieceH
			endProd := startProd + usedH

			if !intervalsFree(ivs, startProd, endProd) {
				if nxt, found := windowSearch(ivs, startProd, perPieceH, cap); found && nxt > startProd+eps && nxt < cap-eps {
					tasks = append(tasks, waitTask(day, machine, seq[mid], startProd, nxt, cap))
					t[mid] = nxt
					seq[mid]++
					continue slotLoop
				}
				done[mid] = true
				t[mid] = cap
				continue slotLoop
			}

			reserve(day, chosen.comp.MoldID, startProd, endProd)
			if _, owned := componentOwner[chosen.comp.ID]; !owned {
				componentOwner[chosen.comp.ID] = mid
			}

			tasks = append(tasks, produceTask(day, machine, seq[mid], chosen.comp, qty, startProd, endProd, cap))

			remaining[chosen.comp.ID] -= qty
			lastComponent[mid] = chosen.comp.ID
			currentMold[mid] = chosen.comp.MoldID
			currentColor[mid] = chosen.comp.Color
			t[mid] = endProd
			seq[mid]++

			if remaining[chosen.comp.ID] <= 0 {
				completionTime[chosen.comp.ID] = completion{day: day, hour: endProd}
			}
		}

		for _, m := range machines {
			machineState[m.ID] = machineCarryover{
				moldID:        currentMold[m.ID],
				color:         currentColor[m.ID],
				lastComponent: lastComponent[m.ID],
			}
		}
	}

	// Assignments are ordered by day, machine input order, then sequence-in-day.
	machineIdx := make(map[string]int, len(machines))
	for i, m := range machines {
		machineIdx[m.ID] = i
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if ma, mb := machineIdx[a.MachineID], machineIdx[b.MachineID]; ma != mb {
			return ma < mb
		}
		return a.SequenceInDay < b.SequenceInDay
	})

	unmet := make(map[string]int)
	for cid, qty := range remaining {
		if qty > 0 {
			unmet[cid] = qty
		}
	}
	return tasks, unmet, nil
}

// pickActiveMachine returns the non-done machine with the smallest current
// time, ties broken by input order.
func pickActiveMachine(machines []domain.Machine, t, usable map[string]float64, done map[string]bool) (domain.Machine, bool) {
	found := false
	var best domain.Machine
	var bestT float64
	for _, m := range machines {
		if done[m.ID] || t[m.ID] >= usable[m.ID]-eps {
			continue
		}
		if !found || t[m.ID] < bestT {
			best = m
			bestT = t[m.ID]
			found = true
		}
	}
	return best, found
}

// filterPreferred applies the two-stage filtering discipline: prefer sticky
// candidates if any exist, then (within what remains) prefer color-matching
// candidates if any exist.
func filterPreferred(candidates []candidate, hasLast, hasColor bool) []candidate {
	if hasLast {
		if anySticky := containsSticky(candidates); anySticky {
			candidates = onlySticky(candidates)
		}
	}
	if hasColor {
		if anySameColor := containsColorMatch(candidates); anySameColor {
			candidates = onlyColorMatch(candidates)
		}
	}
	return candidates
}

func containsSticky(cs []candidate) bool {
	for _, c := range cs {
		if c.sticky == 1 {
			return true
		}
	}
	return false
}

func onlySticky(cs []candidate) []candidate {
	out := cs[:0:0]
	for _, c := range cs {
		if c.sticky == 1 {
			out = append(out, c)
		}
	}
	return out
}

func containsColorMatch(cs []candidate) bool {
	for _, c := range cs {
		if c.colorMatch == 1 {
			return true
		}
	}
	return false
}

func onlyColorMatch(cs []candidate) []candidate {
	out := cs[:0:0]
	for _, c := range cs {
		if c.colorMatch == 1 {
			out = append(out, c)
		}
	}
	return out
}

// nextReadyTime resolves prerequisite readiness on the given day. Returns
// (readyHour, true) if the component may start no earlier than readyHour
// today; (0, false) if a prerequisite finishes on a later day or has not
// finished at all.
func nextReadyTime(comp domain.Component, completionTime map[string]completion, day int, afterHour float64) (float64, bool) {
	var needed []float64
	for _, pr := range comp.Prerequisites {
		ct, ok := completionTime[pr]
		if !ok {
			return 0, false
		}
		if ct.day > day {
			return 0, false
		}
		if ct.day == day && ct.hour > afterHour+eps {
			needed = append(needed, ct.hour)
		}
	}
	if len(needed) == 0 {
		return afterHour, true
	}
	max := needed[0]
	for _, v := range needed[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

func utilization(used, cap float64) float64 {
	if cap <= eps {
		return 0
	}
	if u := used / cap; u < 1 {
		return u
	}
	return 1
}

func waitTask(day int, m domain.Machine, seq int, start, end, cap float64) domain.Task {
	used := end - start
	return domain.Task{
		Day: day, MachineID: m.ID, MachineName: m.Name, SequenceInDay: seq,
		TaskType: domain.TaskWait, UsedHours: used, StartHour: start, EndHour: end,
		Utilization: utilization(used, cap),
	}
}

func changeColorTask(day int, m domain.Machine, seq int, from, to string, start, end, cap float64) domain.Task {
	used := end - start
	return domain.Task{
		Day: day, MachineID: m.ID, MachineName: m.Name, SequenceInDay: seq,
		TaskType: domain.TaskChangeColor, UsedHours: used, StartHour: start, EndHour: end,
		Utilization: utilization(used, cap),
		FromColor: from, ToColor: to,
	}
}

func changeMoldTask(day int, m domain.Machine, seq int, from, to string, start, end, cap float64) domain.Task {
	used := end - start
	return domain.Task{
		Day: day, MachineID: m.ID, MachineName: m.Name, SequenceInDay: seq,
		TaskType: domain.TaskChangeMold, UsedHours: used, StartHour: start, EndHour: end,
		Utilization: utilization(used, cap),
		FromMoldID:  from, ToMoldID: to,
	}
}

func produceTask(day int, m domain.Machine, seq int, c domain.Component, qty int, start, end, cap float64) domain.Task {
	used := end - start
	return domain.Task{
		Day: day, MachineID: m.ID, MachineName: m.Name, SequenceInDay: seq,
		TaskType: domain.TaskProduce, UsedHours: used, StartHour: start, EndHour: end,
		Utilization:   utilization(used, cap),
		MoldID:        c.MoldID,
		ComponentID:   c.ID,
		ComponentName: c.Name,
		Color:         c.Color,
		ProducedQty:   qty,
	}
}
