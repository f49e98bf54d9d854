package frame

// SSBScheduleInfo describes the SSB candidate (if any) transmitted in a slot.
type SSBScheduleInfo struct {
	SSBIndex    int
	StartSymbol int
}

// SIB1ScheduleInfo describes the SIB1 PDCCH/PDSCH occasion (if any)
// scheduled in a slot.
type SIB1ScheduleInfo struct {
	Coreset0 Coreset0Config
}

// SlotSchedule is the scheduling decision for a single (SFN, slot): which
// SSB candidates and which SIB1 occasion, if any, land in it. Either or both
// fields may be nil, matching the original's
// SlotSchedule{ssb_info?, sib1_info?} contract.
type SlotSchedule struct {
	SFN      int
	Slot     int
	SSBs     []SSBScheduleInfo
	SIB1Info *SIB1ScheduleInfo
}

// Scheduler computes the per-slot schedule for SSB and SIB1 transmission
// given a numerology and CORESET#0 index, grounded on
// layers/src/mac/scheduler.rs's get_slot_schedule.
type Scheduler struct {
	mu            Numerology
	coreset0Index int
	coreset0      Coreset0Config
	sib1Slots     map[int]bool
}

// NewScheduler builds a Scheduler for the given numerology and CORESET#0
// table index.
func NewScheduler(mu Numerology, coreset0Index int) (*Scheduler, error) {
	cfg, err := Coreset0FromIndex(coreset0Index)
	if err != nil {
		return nil, err
	}
	slots := Type0PDCCHMonitoringSlots(mu, coreset0Index)
	slotSet := make(map[int]bool, len(slots))
	for _, s := range slots {
		slotSet[s] = true
	}
	return &Scheduler{mu: mu, coreset0Index: coreset0Index, coreset0: cfg, sib1Slots: slotSet}, nil
}

// GetSlotSchedule returns the schedule for the given SFN and slot-within-frame.
func (s *Scheduler) GetSlotSchedule(sfn, slot int) SlotSchedule {
	sched := SlotSchedule{SFN: sfn, Slot: slot}

	if IsSSBFrame(sfn) {
		for _, cand := range CaseACandidates() {
			if cand.Slot == slot {
				sched.SSBs = append(sched.SSBs, SSBScheduleInfo{
					SSBIndex:    cand.Index,
					StartSymbol: cand.StartSymbol,
				})
			}
		}
	}

	slotsPerFrame := s.mu.SlotsPerFrame()
	framesPerWindow := 160 / 10
	absoluteSlot := (sfn%framesPerWindow)*slotsPerFrame + slot
	if s.sib1Slots[absoluteSlot] {
		sched.SIB1Info = &SIB1ScheduleInfo{Coreset0: s.coreset0}
	}

	return sched
}
