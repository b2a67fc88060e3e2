// Package beacon builds capture entries from raw 802.11 management traffic
// recorded in a pcap file, one entry per access point.
package beacon

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/wifiprep/internal/capture"
	"github.com/banshee-data/wifiprep/internal/features"
	"github.com/banshee-data/wifiprep/internal/monitoring"
)

// ErrLinkType is returned for captures that are not raw 802.11.
var ErrLinkType = errors.New("unsupported pcap link type")

// Information element IDs inspected by the decoder.
const (
	ieSSID    = layers.Dot11InformationElementID(0)
	ieRates   = layers.Dot11InformationElementID(1)
	ieDSSet   = layers.Dot11InformationElementID(3)
	ieHTCap   = layers.Dot11InformationElementID(45)
	ieRSN     = layers.Dot11InformationElementID(48)
	ieHTOp    = layers.Dot11InformationElementID(61)
	ieVHTCap  = layers.Dot11InformationElementID(191)
	ieVendor  = layers.Dot11InformationElementID(221)
	capESSBit = 0x0001
)

var (
	ouiWPS = [4]byte{0x00, 0x50, 0xF2, 0x04}
	ouiWPA = [4]byte{0x00, 0x50, 0xF2, 0x01}
	akmSAE = [4]byte{0x00, 0x0F, 0xAC, 0x08}
)

// Load reads the pcap file at path.
func Load(path string) ([]capture.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a classic pcap stream with 802.11 or radiotap link type.
// Entries come out in the order their BSSID was first observed.
func Read(r io.Reader) ([]capture.Entry, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcap header: %w", err)
	}
	lt := pr.LinkType()
	if lt != layers.LinkTypeIEEE802_11 && lt != layers.LinkTypeIEEE80211Radio {
		return nil, fmt.Errorf("%w: %s", ErrLinkType, lt)
	}

	t := newTracker()
	src := gopacket.NewPacketSource(pr, lt)
	packetCount := 0
	for {
		pkt, err := src.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read packet %d: %w", packetCount+1, err)
		}
		packetCount++
		t.observe(pkt)
	}

	monitoring.Debugf("pcap: %d packets, %d access points, %d frames ignored", packetCount, len(t.order), t.ignored)
	return t.entries(), nil
}

// apState accumulates observations for one BSSID.
type apState struct {
	bssid     string
	ssid      string
	firstSeen time.Time
	beacons   []time.Time
	f         features.BeaconFeatures
	haveBody  bool
	probeResp bool
}

type tracker struct {
	order     []*apState
	byBSSID   map[string]*apState
	lastProbe time.Time
	ignored   int
}

func newTracker() *tracker {
	return &tracker{byBSSID: make(map[string]*apState)}
}

func (t *tracker) state(bssid string, ts time.Time) *apState {
	if ap, ok := t.byBSSID[bssid]; ok {
		return ap
	}
	ap := &apState{bssid: bssid, firstSeen: ts}
	t.byBSSID[bssid] = ap
	t.order = append(t.order, ap)
	return ap
}

func (t *tracker) observe(pkt gopacket.Packet) {
	dl := pkt.Layer(layers.LayerTypeDot11)
	if dl == nil {
		t.ignored++
		return
	}
	dot11, ok := dl.(*layers.Dot11)
	if !ok {
		t.ignored++
		return
	}
	ts := pkt.Metadata().Timestamp

	switch dot11.Type {
	case layers.Dot11TypeMgmtProbeReq:
		t.lastProbe = ts
		return
	case layers.Dot11TypeMgmtBeacon:
		b, ok := pkt.Layer(layers.LayerTypeDot11MgmtBeacon).(*layers.Dot11MgmtBeacon)
		if !ok {
			t.ignored++
			return
		}
		ap := t.state(dot11.Address3.String(), ts)
		ap.beacons = append(ap.beacons, ts)
		ap.applyBody(b.Interval, b.Flags, pkt)
		ap.applyRadio(pkt)
	case layers.Dot11TypeMgmtProbeResp:
		pr, ok := pkt.Layer(layers.LayerTypeDot11MgmtProbeResp).(*layers.Dot11MgmtProbeResp)
		if !ok {
			t.ignored++
			return
		}
		ap := t.state(dot11.Address3.String(), ts)
		if !ap.probeResp {
			ap.probeResp = true
			ap.f.RespondsToProbe = true
			if !t.lastProbe.IsZero() && !ts.Before(t.lastProbe) {
				ap.f.ProbeResponseTime = clampMillis(ts.Sub(t.lastProbe))
			}
		}
		if !ap.haveBody {
			ap.applyBody(pr.Interval, pr.Flags, pkt)
		}
		ap.applyRadio(pkt)
	default:
		t.ignored++
	}
}

// applyBody records the fixed fields and information elements of a beacon
// or probe response body.
func (ap *apState) applyBody(interval, capability uint16, pkt gopacket.Packet) {
	ap.haveBody = true
	ap.f.BeaconInterval = interval
	ap.f.Capability = capability

	var (
		ssidSeen bool
		vendors  uint8
	)
	ap.f.HasWPS, ap.f.HasWPA, ap.f.HasWPA2, ap.f.HasWPA3 = false, false, false, false
	ap.f.HTCapabilities, ap.f.VHTCapabilities = 0, 0

	for _, l := range pkt.Layers() {
		ie, ok := l.(*layers.Dot11InformationElement)
		if !ok {
			continue
		}
		switch ie.ID {
		case ieSSID:
			if !ssidSeen {
				ssidSeen = true
				ap.ssid = string(ie.Info)
				ap.f.IsHidden = hiddenSSID(ie.Info)
			}
		case ieRates:
			ap.f.SupportedRates = ie.Length
		case ieDSSet:
			if len(ie.Info) >= 1 {
				ap.f.Channel = ie.Info[0]
			}
		case ieHTCap:
			ap.f.HTCapabilities = 1
		case ieVHTCap:
			ap.f.VHTCapabilities = 1
		case ieHTOp:
			if len(ie.Info) >= 2 {
				switch ie.Info[1] & 0x03 {
				case 1:
					ap.f.SecondaryChannel = 1
				case 3:
					ap.f.SecondaryChannel = 2
				default:
					ap.f.SecondaryChannel = 0
				}
			}
		case ieRSN:
			ap.f.HasWPA2 = true
			if rsnHasAKM(ie.Info, akmSAE) {
				ap.f.HasWPA3 = true
			}
		case ieVendor:
			vendors++
			if len(ie.OUI) >= 4 {
				var oui [4]byte
				copy(oui[:], ie.OUI[:4])
				switch oui {
				case ouiWPS:
					ap.f.HasWPS = true
				case ouiWPA:
					ap.f.HasWPA = true
				}
			}
		}
	}
	if !ssidSeen {
		ap.f.IsHidden = true
	}
	if capability&capESSBit == 0 {
		ap.f.IsHidden = true
	}
	ap.f.VendorIECount = vendors
}

// applyRadio takes signal, noise and (absent a DS element) channel from the
// radiotap header of the most recent frame.
func (ap *apState) applyRadio(pkt gopacket.Packet) {
	ap.f.RSSI = features.DefaultRSSI
	ap.f.Noise = features.NoiseFloorDBm
	rt, ok := pkt.Layer(layers.LayerTypeRadioTap).(*layers.RadioTap)
	if ok {
		if rt.Present.DBMAntennaSignal() {
			ap.f.RSSI = rt.DBMAntennaSignal
		}
		if rt.Present.DBMAntennaNoise() {
			ap.f.Noise = rt.DBMAntennaNoise
		}
		if ap.f.Channel == 0 && rt.Present.Channel() {
			ap.f.Channel = ChannelForFrequency(int(rt.ChannelFrequency))
		}
	}
	ap.f.SNR = float32(ap.f.RSSI) - float32(ap.f.Noise)
}

func (ap *apState) entry() capture.Entry {
	f := ap.f
	f.BeaconCount = uint16(min(len(ap.beacons), math.MaxUint16))
	f.BeaconJitter = float32(beaconJitter(ap.beacons))
	if f.Channel == 0 {
		f.Channel = features.DefaultChannel
	}

	rssi := int(f.RSSI)
	channel := int(f.Channel)
	return capture.Entry{
		BSSID:     ap.bssid,
		SSID:      ap.ssid,
		RSSI:      &rssi,
		Channel:   &channel,
		Features:  f.Slice(),
		Timestamp: capture.Timestamp(ap.firstSeen.UTC().Format(time.RFC3339Nano)),
	}
}

func (t *tracker) entries() []capture.Entry {
	out := make([]capture.Entry, 0, len(t.order))
	for _, ap := range t.order {
		out = append(out, ap.entry())
	}
	return out
}

// beaconJitter is the population standard deviation of the gaps between
// consecutive beacons, in milliseconds.
func beaconJitter(ts []time.Time) float64 {
	if len(ts) < 3 {
		return 0
	}
	gaps := make([]float64, 0, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		gaps = append(gaps, float64(ts[i].Sub(ts[i-1]))/float64(time.Millisecond))
	}
	_, variance := stat.PopMeanVariance(gaps, nil)
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

func hiddenSSID(ssid []byte) bool {
	for _, b := range ssid {
		if b != 0 {
			return false
		}
	}
	return true
}

// rsnHasAKM walks an RSN element body looking for an AKM suite selector.
func rsnHasAKM(info []byte, want [4]byte) bool {
	// version(2) group cipher(4)
	off := 6
	if len(info) < off+2 {
		return false
	}
	pairwise := int(info[off]) | int(info[off+1])<<8
	off += 2 + 4*pairwise
	if len(info) < off+2 {
		return false
	}
	akms := int(info[off]) | int(info[off+1])<<8
	off += 2
	for i := 0; i < akms; i++ {
		if len(info) < off+4 {
			return false
		}
		if [4]byte(info[off:off+4]) == want {
			return true
		}
		off += 4
	}
	return false
}

func clampMillis(d time.Duration) uint16 {
	ms := d.Milliseconds()
	if ms > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(ms)
}

// ChannelForFrequency maps a centre frequency in MHz to an 802.11 channel
// number, or 0 when the frequency is outside the known bands.
func ChannelForFrequency(mhz int) uint8 {
	switch {
	case mhz == 2484:
		return 14
	case mhz >= 2412 && mhz <= 2472:
		return uint8((mhz-2412)/5 + 1)
	case mhz >= 5955 && mhz <= 7115:
		return uint8((mhz - 5950) / 5)
	case mhz >= 5000 && mhz < 5955:
		return uint8((mhz - 5000) / 5)
	default:
		return 0
	}
}
