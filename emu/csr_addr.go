package emu

// User-level CSR addresses.
const (
	CSRUStatus    uint16 = 0x000
	CSRFFlags     uint16 = 0x001
	CSRFRM        uint16 = 0x002
	CSRFCSR       uint16 = 0x003
	CSRUIE        uint16 = 0x004
	CSRUTVec      uint16 = 0x005
	CSRUScratch   uint16 = 0x040
	CSRUEPC       uint16 = 0x041
	CSRUCause     uint16 = 0x042
	CSRUTVal      uint16 = 0x043
	CSRUIP        uint16 = 0x044
	CSRCycle      uint16 = 0xC00
	CSRTime       uint16 = 0xC01
	CSRInstRet    uint16 = 0xC02
	CSRHPMCount3  uint16 = 0xC03 // through 0xC1F
	CSRCycleH     uint16 = 0xC80
	CSRTimeH      uint16 = 0xC81
	CSRInstRetH   uint16 = 0xC82
	CSRHPMCount3H uint16 = 0xC83 // through 0xC9F
)

// Supervisor-level CSR addresses.
const (
	CSRSStatus    uint16 = 0x100
	CSRSEDeleg    uint16 = 0x102
	CSRSIDeleg    uint16 = 0x103
	CSRSIE        uint16 = 0x104
	CSRSTVec      uint16 = 0x105
	CSRSCounterEn uint16 = 0x106
	CSRSScratch   uint16 = 0x140
	CSRSEPC       uint16 = 0x141
	CSRSCause     uint16 = 0x142
	CSRSTVal      uint16 = 0x143
	CSRSIP        uint16 = 0x144
	CSRSATP       uint16 = 0x180
)

// Machine-level CSR addresses.
const (
	CSRMVendorID     uint16 = 0xF11
	CSRMArchID       uint16 = 0xF12
	CSRMImpID        uint16 = 0xF13
	CSRMHartID       uint16 = 0xF14
	CSRMStatus       uint16 = 0x300
	CSRMISA          uint16 = 0x301
	CSRMEDeleg       uint16 = 0x302
	CSRMIDeleg       uint16 = 0x303
	CSRMIE           uint16 = 0x304
	CSRMTVec         uint16 = 0x305
	CSRMCounterEn    uint16 = 0x306
	CSRMCountInhibit uint16 = 0x320
	CSRMHPMEvent3    uint16 = 0x323 // through 0x33F
	CSRMScratch      uint16 = 0x340
	CSRMEPC          uint16 = 0x341
	CSRMCause        uint16 = 0x342
	CSRMTVal         uint16 = 0x343
	CSRMIP           uint16 = 0x344
	CSRPMPCfg0       uint16 = 0x3A0 // through 0x3A3
	CSRPMPAddr0      uint16 = 0x3B0 // through 0x3BF
	CSRTSelect       uint16 = 0x7A0
	CSRTData1        uint16 = 0x7A1
	CSRTData2        uint16 = 0x7A2
	CSRTData3        uint16 = 0x7A3
	CSRDCSR          uint16 = 0x7B0
	CSRDPC           uint16 = 0x7B1
	CSRDScratch0     uint16 = 0x7B2
	CSRDScratch1     uint16 = 0x7B3
	CSRMCycle        uint16 = 0xB00
	CSRMInstRet      uint16 = 0xB02
	CSRMHPMCount3    uint16 = 0xB03 // through 0xB1F
	CSRMCycleH       uint16 = 0xB80
	CSRMInstRetH     uint16 = 0xB82
	CSRMHPMCount3H   uint16 = 0xB83 // through 0xB9F
)

func addrRange(first, last uint16) []uint16 {
	addrs := make([]uint16, 0, last-first+1)
	for a := first; a <= last; a++ {
		addrs = append(addrs, a)
	}
	return addrs
}

func userAddrs() []uint16 {
	addrs := []uint16{
		CSRUStatus, CSRFFlags, CSRFRM, CSRFCSR, CSRUIE, CSRUTVec,
		CSRUScratch, CSRUEPC, CSRUCause, CSRUTVal, CSRUIP,
		CSRCycle, CSRTime, CSRInstRet,
		CSRCycleH, CSRTimeH, CSRInstRetH,
	}
	addrs = append(addrs, addrRange(CSRHPMCount3, 0xC1F)...)
	addrs = append(addrs, addrRange(CSRHPMCount3H, 0xC9F)...)
	return addrs
}

func supervisorAddrs() []uint16 {
	return []uint16{
		CSRSStatus, CSRSEDeleg, CSRSIDeleg, CSRSIE, CSRSTVec,
		CSRSCounterEn, CSRSScratch, CSRSEPC, CSRSCause, CSRSTVal,
		CSRSIP, CSRSATP,
	}
}

func machineAddrs() []uint16 {
	addrs := []uint16{
		CSRMVendorID, CSRMArchID, CSRMImpID, CSRMHartID,
		CSRMStatus, CSRMISA, CSRMEDeleg, CSRMIDeleg, CSRMIE, CSRMTVec,
		CSRMCounterEn, CSRMCountInhibit,
		CSRMScratch, CSRMEPC, CSRMCause, CSRMTVal, CSRMIP,
		CSRTSelect, CSRTData1, CSRTData2, CSRTData3,
		CSRDCSR, CSRDPC, CSRDScratch0, CSRDScratch1,
		CSRMCycle, CSRMInstRet, CSRMCycleH, CSRMInstRetH,
	}
	addrs = append(addrs, addrRange(CSRMHPMEvent3, 0x33F)...)
	addrs = append(addrs, addrRange(CSRPMPCfg0, 0x3A3)...)
	addrs = append(addrs, addrRange(CSRPMPAddr0, 0x3BF)...)
	addrs = append(addrs, addrRange(CSRMHPMCount3, 0xB1F)...)
	addrs = append(addrs, addrRange(CSRMHPMCount3H, 0xB9F)...)
	return addrs
}
