// Package domain defines the core domain types for the Sentinel network
// health monitoring system.
//
// This package contains the fundamental entities and value objects that the
// analysis engine operates on: devices and rosters, raw metric samples, wifi
// observations and channel statistics, severity-tagged issues, and the health
// summaries kept in rolling history.
//
// # Core Types
//
// Device represents a single tracked host with its classification status
// (online, offline, unknown) and last-seen timestamp. DeviceRoster is the
// IP-keyed snapshot of all tracked devices with derived totals.
//
// NetworkMetricsSample, BandwidthSample and WifiStats carry the raw inputs
// collected each cycle. WifiNetworkObservation is a single scanned network;
// ChannelStat is the congestion score computed for one channel.
//
// Issue is a severity-tagged finding produced by the health aggregator.
// HealthSummary is the per-cycle aggregate stored as an immutable history
// entry and used for trend detection.
//
// # Design Principles
//
// - Immutable value objects where possible
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
// - Rich type system with meaningful constants and enumerations
package domain
