// Package sched implements the time-ordered scheduler queue of deferred
// function invocations, fired by repeated Update ticks against a clock the
// host controls.
package sched

import (
	"container/heap"
	"fmt"

	"tinscript/internal/funcs"
	"tinscript/internal/types"
)

// Executor re-enters the shared call-execution path to run a scheduled
// function, whether it fires immediately (the immediate flag runs it
// synchronously through the shared execute path) or from a later Update
// tick. Implemented by internal/vm.Machine / the script package.
type Executor interface {
	ExecuteScheduledFunction(objectID, funcHash uint32, ctx *funcs.Context) (types.Value, error)
}

// Record is a pending (or, while firing, in-flight) scheduled call:
// (request_id, at_time, object_id, func_hash, repeat?, context,
// immediate_flag).
type Record struct {
	RequestID uint64
	AtTime    int64
	ObjectID  uint32
	FuncHash  uint32
	Repeat    bool
	Immediate bool
	Context   *funcs.Context

	// RepeatInterval is the period re-enqueued when Repeat is set.
	RepeatInterval int64

	seq   uint64 // insertion order, the tie-break for equal AtTime
	index int    // heap bookkeeping
}

// pending implements container/heap, ordered by (AtTime, seq) so that ties
// resolve in enqueue order.
type pending []*Record

func (p pending) Len() int { return len(p) }
func (p pending) Less(i, j int) bool {
	if p[i].AtTime != p[j].AtTime {
		return p[i].AtTime < p[j].AtTime
	}
	return p[i].seq < p[j].seq
}
func (p pending) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
	p[i].index, p[j].index = i, j
}
func (p *pending) Push(x interface{}) {
	r := x.(*Record)
	r.index = len(*p)
	*p = append(*p, r)
}
func (p *pending) Pop() interface{} {
	old := *p
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	*p = old[:n-1]
	return r
}

// Scheduler owns the pending-call heap and the single in-progress
// "current schedule" construction slot: only one schedule may be under
// construction at a time in a given context.
type Scheduler struct {
	queue   pending
	byID    map[uint64]*Record
	nextID  uint64
	nextSeq uint64

	building *Record
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{byID: map[uint64]*Record{}}
}

// Begin starts constructing a new scheduled call. Returns an error if a
// schedule is already under construction.
func (s *Scheduler) Begin(delay int64, now int64, objectID, funcHash uint32, immediate bool, ctx *funcs.Context) error {
	if s.building != nil {
		return fmt.Errorf("a schedule is already under construction in this context")
	}
	s.nextID++
	s.building = &Record{
		RequestID: s.nextID,
		AtTime:    now + delay,
		ObjectID:  objectID,
		FuncHash:  funcHash,
		Immediate: immediate,
		Context:   ctx,
	}
	return nil
}

// Param copies v into the in-progress schedule's parameter i, inferring the
// context parameter's type from v's pushed type -- the only place parameter
// types are inferred rather than declared.
func (s *Scheduler) Param(i int, v types.Value) error {
	if s.building == nil {
		return fmt.Errorf("ScheduleParam with no schedule under construction")
	}
	params := s.building.Context.Parameters
	if i <= 0 || i >= len(params) {
		return fmt.Errorf("ScheduleParam index %d out of range", i)
	}
	params[i].Type = v.Type
	params[i].Set(v)
	return nil
}

// End finishes the in-progress schedule. If immediate, it executes
// synchronously through exec and returns its value; otherwise it enqueues
// by absolute time and returns the request id as an int value.
func (s *Scheduler) End(exec Executor) (types.Value, error) {
	if s.building == nil {
		return types.Value{}, fmt.Errorf("ScheduleEnd with no schedule under construction")
	}
	rec := s.building
	s.building = nil

	if rec.Immediate {
		return exec.ExecuteScheduledFunction(rec.ObjectID, rec.FuncHash, rec.Context)
	}

	rec.seq = s.nextSeq
	s.nextSeq++
	heap.Push(&s.queue, rec)
	s.byID[rec.RequestID] = rec
	return types.NewInt(int32(rec.RequestID)), nil
}

// Update fires every record whose AtTime <= now, in (time, enqueue-order)
// order, re-entering exec for each. Records marked Repeat are re-enqueued
// at now + RepeatInterval.
func (s *Scheduler) Update(now int64, exec Executor) error {
	for s.queue.Len() > 0 && s.queue[0].AtTime <= now {
		rec := heap.Pop(&s.queue).(*Record)
		delete(s.byID, rec.RequestID)
		if _, err := exec.ExecuteScheduledFunction(rec.ObjectID, rec.FuncHash, rec.Context); err != nil {
			return err
		}
		if rec.Repeat {
			rec.AtTime = now + rec.RepeatInterval
			rec.seq = s.nextSeq
			s.nextSeq++
			heap.Push(&s.queue, rec)
			s.byID[rec.RequestID] = rec
		}
	}
	return nil
}

// CancelByRequestID removes a pending record. Cancelling an id that has
// already fired (or never existed) is a no-op.
func (s *Scheduler) CancelByRequestID(id uint64) {
	rec, ok := s.byID[id]
	if !ok {
		return
	}
	heap.Remove(&s.queue, rec.index)
	delete(s.byID, id)
}

// CancelByObjectID cancels every pending record owned by objectID.
func (s *Scheduler) CancelByObjectID(objectID uint32) {
	var toCancel []uint64
	for id, rec := range s.byID {
		if rec.ObjectID == objectID {
			toCancel = append(toCancel, id)
		}
	}
	for _, id := range toCancel {
		s.CancelByRequestID(id)
	}
}

// Pending reports the number of records currently enqueued, for tests and
// diagnostics.
func (s *Scheduler) Pending() int { return s.queue.Len() }

// Each iterates every currently pending record; iteration order is
// unspecified (the in-progress building record, if any, is not included).
// Backs ListSchedules at the context-function layer.
func (s *Scheduler) Each(f func(*Record) bool) {
	for _, rec := range s.byID {
		if !f(rec) {
			return
		}
	}
}
