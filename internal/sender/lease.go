package sender

// Lease tuning constants, grounded on zp_binlog_sender.cc's kBinlogMinLease/
// kBinlogRedundantLease (values not present anywhere in the retrieval pack;
// spec.md §4.4 only requires the lease grow with pool size / worker count
// and stay >= kBinlogMinLease, so these are this repo's own choice).
const (
	binlogMinLeaseSeconds       int64 = 10
	binlogRedundantLeaseSeconds int64 = 5
)

// leaseSeconds derives the lease advertised to a peer from current pool
// load, the way RenewPeerLease does: a worst-case worker rotation takes
// poolSize/workerCount slices, so the lease must be at least that long, or
// the follower will re-issue a TrySync between two contacts.
func leaseSeconds(poolSize int, workerCount int, timeSlice int64) int64 {
	if workerCount <= 0 {
		workerCount = 1
	}
	lease := int64(poolSize)*timeSlice/int64(workerCount) + binlogRedundantLeaseSeconds
	if lease < binlogMinLeaseSeconds {
		lease = binlogMinLeaseSeconds
	}
	return lease
}
